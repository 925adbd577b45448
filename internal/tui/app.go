package tui

import (
	"sync"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/yourusername/robot-dashboard/internal/dashboard"
)

// Dashboard is the terminal front end for the dashboard controller
type Dashboard struct {
	app     *tview.Application
	root    *tview.Flex
	title   *tview.TextView
	status  *StatusRow
	command *CommandRow
	buttons []*CommandButton
	focus   int

	// queue runs a view mutation on the UI goroutine
	queue   func(func())
	stopped atomic.Bool

	mu      sync.RWMutex
	onPress func(id string)
}

// NewDashboard builds the layout with one button per command id
func NewDashboard(title string, ids []string) *Dashboard {
	app := tview.NewApplication()

	d := &Dashboard{
		app:     app,
		title:   tview.NewTextView().SetDynamicColors(true).SetTextAlign(tview.AlignCenter),
		status:  NewStatusRow(),
		command: NewCommandRow(),
	}
	d.queue = func(fn func()) {
		if d.stopped.Load() {
			return
		}
		app.QueueUpdateDraw(fn)
	}

	d.title.SetText("[::b]" + tview.Escape(title) + "[::-]")

	buttonRow := tview.NewFlex().SetDirection(tview.FlexColumn)
	buttonRow.AddItem(nil, 1, 0, false)
	for _, id := range ids {
		b := NewCommandButton(id, d.press)
		d.buttons = append(d.buttons, b)
		buttonRow.AddItem(b.GetButton(), 0, 1, false)
		buttonRow.AddItem(nil, 1, 0, false)
	}

	help := tview.NewTextView().
		SetDynamicColors(true).
		SetText(" [gray]Tab/Shift-Tab: select  Enter: send  q: quit[-]")

	d.root = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(d.title, 1, 0, false).
		AddItem(d.status.GetView(), 1, 0, false).
		AddItem(d.command.GetView(), 1, 0, false).
		AddItem(nil, 1, 0, false).
		AddItem(buttonRow, 3, 0, true).
		AddItem(nil, 0, 1, false).
		AddItem(help, 1, 0, false)
	d.root.SetBorder(true)

	app.SetRoot(d.root, true).EnableMouse(true)
	app.SetInputCapture(d.handleKey)
	if len(d.buttons) > 0 {
		app.SetFocus(d.buttons[0].GetButton())
	}

	return d
}

// SetPressHandler sets the callback for button presses
func (d *Dashboard) SetPressHandler(fn func(id string)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onPress = fn
}

// View returns handles for the dashboard controller. Every write is
// queued onto the UI goroutine.
func (d *Dashboard) View() dashboard.View {
	buttons := make([]dashboard.Button, 0, len(d.buttons))
	for _, b := range d.buttons {
		buttons = append(buttons, queuedButton{d: d, b: b})
	}
	return dashboard.View{
		Dot:              queuedDot{d},
		StatusText:       queuedStatusText{d},
		LastCommand:      queuedCommandText{d},
		CommandIndicator: queuedIndicator{d},
		Buttons:          buttons,
	}
}

// Run blocks until the application stops. Writes to the view after Run
// returns are dropped.
func (d *Dashboard) Run() error {
	defer d.stopped.Store(true)
	return d.app.Run()
}

// Stop ends Run
func (d *Dashboard) Stop() {
	d.stopped.Store(true)
	d.app.Stop()
}

func (d *Dashboard) press(id string) {
	d.mu.RLock()
	fn := d.onPress
	d.mu.RUnlock()
	if fn != nil {
		fn(id)
	}
}

func (d *Dashboard) handleKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyTab, tcell.KeyRight:
		d.moveFocus(1)
		return nil
	case tcell.KeyBacktab, tcell.KeyLeft:
		d.moveFocus(-1)
		return nil
	case tcell.KeyRune:
		if event.Rune() == 'q' {
			d.Stop()
			return nil
		}
	}
	return event
}

func (d *Dashboard) moveFocus(delta int) {
	if len(d.buttons) == 0 {
		return
	}
	d.focus = nextFocus(d.focus, delta, len(d.buttons))
	d.app.SetFocus(d.buttons[d.focus].GetButton())
}

func nextFocus(current, delta, n int) int {
	return ((current+delta)%n + n) % n
}

type queuedDot struct{ d *Dashboard }

func (q queuedDot) SetConnected(connected bool) {
	q.d.queue(func() { q.d.status.SetConnected(connected) })
}

type queuedStatusText struct{ d *Dashboard }

func (q queuedStatusText) SetText(text string) {
	q.d.queue(func() { q.d.status.SetText(text) })
}

type queuedCommandText struct{ d *Dashboard }

func (q queuedCommandText) SetText(text string) {
	q.d.queue(func() { q.d.command.SetText(text) })
}

type queuedIndicator struct{ d *Dashboard }

func (q queuedIndicator) SetVisible(visible bool) {
	q.d.queue(func() { q.d.command.SetVisible(visible) })
}

type queuedButton struct {
	d *Dashboard
	b *CommandButton
}

func (q queuedButton) ID() string { return q.b.ID() }

func (q queuedButton) SetActive(active bool) {
	q.d.queue(func() { q.b.SetActive(active) })
}
