package dashboard

import (
	"sync"

	"github.com/rs/zerolog"
)

// LogView is a View that writes state changes to a logger instead of a
// screen. Repeated writes of the same value are logged once.
type LogView struct {
	logger zerolog.Logger
	ids    []string

	mu        sync.Mutex
	connected *bool
	status    string
	command   string
	visible   bool
	active    map[string]bool
}

// NewLogView creates a headless view with one button per id
func NewLogView(logger zerolog.Logger, ids []string) *LogView {
	return &LogView{
		logger: logger.With().Str("component", "view").Logger(),
		ids:    ids,
		active: make(map[string]bool, len(ids)),
	}
}

// View returns handles for the controller
func (v *LogView) View() View {
	buttons := make([]Button, 0, len(v.ids))
	for _, id := range v.ids {
		buttons = append(buttons, logButton{view: v, id: id})
	}
	return View{
		Dot:              logDot{v},
		StatusText:       logStatusText{v},
		LastCommand:      logLastCommand{v},
		CommandIndicator: logIndicator{v},
		Buttons:          buttons,
	}
}

type logDot struct{ v *LogView }

func (d logDot) SetConnected(connected bool) {
	d.v.mu.Lock()
	defer d.v.mu.Unlock()
	if d.v.connected != nil && *d.v.connected == connected {
		return
	}
	d.v.connected = &connected
	d.v.logger.Debug().Bool("connected", connected).Msg("Status dot")
}

type logStatusText struct{ v *LogView }

func (t logStatusText) SetText(text string) {
	t.v.mu.Lock()
	defer t.v.mu.Unlock()
	if t.v.status == text {
		return
	}
	t.v.status = text
	t.v.logger.Info().Str("status", text).Msg("Status")
}

type logLastCommand struct{ v *LogView }

func (l logLastCommand) SetText(text string) {
	l.v.mu.Lock()
	defer l.v.mu.Unlock()
	l.v.command = text
}

type logIndicator struct{ v *LogView }

func (i logIndicator) SetVisible(visible bool) {
	i.v.mu.Lock()
	defer i.v.mu.Unlock()
	if i.v.visible == visible {
		return
	}
	i.v.visible = visible
	if visible {
		i.v.logger.Info().Str("last_command", i.v.command).Msg("Command shown")
	} else {
		i.v.logger.Debug().Msg("Command hidden")
	}
}

type logButton struct {
	view *LogView
	id   string
}

func (b logButton) ID() string { return b.id }

func (b logButton) SetActive(active bool) {
	b.view.mu.Lock()
	defer b.view.mu.Unlock()
	if b.view.active[b.id] == active {
		return
	}
	b.view.active[b.id] = active
	b.view.logger.Debug().Str("button", b.id).Bool("active", active).Msg("Button")
}

// Status returns the current status text
func (v *LogView) Status() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.status
}

// Command returns the last command label and whether it is shown
func (v *LogView) Command() (string, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.command, v.visible
}
