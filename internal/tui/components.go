package tui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/yourusername/robot-dashboard/internal/dashboard"
)

var (
	connectedColor    = tcell.ColorGreen
	disconnectedColor = tcell.ColorRed

	buttonIdleStyle   = tcell.StyleDefault.Background(tcell.ColorDarkBlue).Foreground(tcell.ColorWhite)
	buttonActiveStyle = tcell.StyleDefault.Background(tcell.ColorYellow).Foreground(tcell.ColorBlack)
)

// StatusRow renders the connection dot followed by the status text
type StatusRow struct {
	view      *tview.TextView
	connected bool
	text      string
}

// NewStatusRow creates a status row showing the disconnected state
func NewStatusRow() *StatusRow {
	view := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft).
		SetWrap(false)

	s := &StatusRow{view: view, text: dashboard.TextDisconnected}
	s.render()
	return s
}

// GetView returns the status TextView
func (s *StatusRow) GetView() *tview.TextView {
	return s.view
}

// SetConnected switches the dot color
func (s *StatusRow) SetConnected(connected bool) {
	s.connected = connected
	s.render()
}

// SetText replaces the status text
func (s *StatusRow) SetText(text string) {
	s.text = text
	s.render()
}

// Connected reports the current dot state
func (s *StatusRow) Connected() bool {
	return s.connected
}

func (s *StatusRow) render() {
	color := disconnectedColor
	if s.connected {
		color = connectedColor
	}
	s.view.SetText(fmt.Sprintf(" [%s]●[-] %s", color.String(), tview.Escape(s.text)))
}

// CommandRow shows the last command while visible and nothing otherwise
type CommandRow struct {
	view    *tview.TextView
	label   string
	visible bool
}

// NewCommandRow creates a hidden command row
func NewCommandRow() *CommandRow {
	view := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft).
		SetWrap(false)
	return &CommandRow{view: view}
}

// GetView returns the command TextView
func (c *CommandRow) GetView() *tview.TextView {
	return c.view
}

// SetText sets the label shown when visible
func (c *CommandRow) SetText(text string) {
	c.label = text
	c.render()
}

// SetVisible shows or hides the row
func (c *CommandRow) SetVisible(visible bool) {
	c.visible = visible
	c.render()
}

// Visible reports whether the row is shown
func (c *CommandRow) Visible() bool {
	return c.visible
}

func (c *CommandRow) render() {
	if !c.visible {
		c.view.SetText("")
		return
	}
	c.view.SetText(fmt.Sprintf(" Last command: [::b]%s[::-]", tview.Escape(c.label)))
}

// CommandButton is a button bound to one command id
type CommandButton struct {
	id     string
	button *tview.Button
	active bool
}

// NewCommandButton creates a button labelled with id. onPress runs on the
// UI goroutine when the button is selected.
func NewCommandButton(id string, onPress func(id string)) *CommandButton {
	b := &CommandButton{id: id}
	b.button = tview.NewButton(id).SetSelectedFunc(func() {
		if onPress != nil {
			onPress(id)
		}
	})
	b.button.SetStyle(buttonIdleStyle)
	return b
}

// GetButton returns the underlying tview button
func (b *CommandButton) GetButton() *tview.Button {
	return b.button
}

// ID returns the command id
func (b *CommandButton) ID() string {
	return b.id
}

// SetActive toggles the highlight
func (b *CommandButton) SetActive(active bool) {
	b.active = active
	if active {
		b.button.SetStyle(buttonActiveStyle)
	} else {
		b.button.SetStyle(buttonIdleStyle)
	}
}

// Active reports whether the highlight is on
func (b *CommandButton) Active() bool {
	return b.active
}
