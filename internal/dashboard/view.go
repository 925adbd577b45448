package dashboard

import "fmt"

// Labels written to the view
const (
	TextConnected    = "Connected"
	TextDisconnected = "Disconnected"
	TextCommandError = "Error"
)

// Dot is the connection status light
type Dot interface {
	SetConnected(connected bool)
}

// Label is a piece of text on the page
type Label interface {
	SetText(text string)
}

// Indicator is an element that is either shown or hidden
type Indicator interface {
	SetVisible(visible bool)
}

// Button is a pressable element whose id names the command it sends
type Button interface {
	ID() string
	SetActive(active bool)
}

// View holds the handles the controller writes to. Every handle is
// required; Buttons may be empty.
type View struct {
	Dot              Dot
	StatusText       Label
	LastCommand      Label
	CommandIndicator Indicator
	Buttons          []Button
}

func (v View) validate() error {
	switch {
	case v.Dot == nil:
		return fmt.Errorf("view: status dot is required")
	case v.StatusText == nil:
		return fmt.Errorf("view: status text is required")
	case v.LastCommand == nil:
		return fmt.Errorf("view: last command label is required")
	case v.CommandIndicator == nil:
		return fmt.Errorf("view: command indicator is required")
	}
	for i, b := range v.Buttons {
		if b == nil {
			return fmt.Errorf("view: button %d is nil", i)
		}
	}
	return nil
}
