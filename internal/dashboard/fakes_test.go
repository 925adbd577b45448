package dashboard

import (
	"context"
	"fmt"
	"sync"
)

// fakeRobot answers status and command requests from canned results.
// Commands with a gate block until a result is sent on it. Once holdStatus
// is called, every status request blocks until its own gate is released.
type fakeRobot struct {
	mu          sync.Mutex
	statusErr   error
	statusCalls chan chan error
	cmdErr      map[string]error
	gates       map[string]chan error
	commands    []string
	polls       int
}

func newFakeRobot() *fakeRobot {
	return &fakeRobot{
		cmdErr: make(map[string]error),
		gates:  make(map[string]chan error),
	}
}

func (r *fakeRobot) Status(ctx context.Context) error {
	r.mu.Lock()
	r.polls++
	calls := r.statusCalls
	err := r.statusErr
	r.mu.Unlock()

	if calls == nil {
		return err
	}
	gate := make(chan error, 1)
	select {
	case calls <- gate:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-gate:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// holdStatus makes status requests block. Each request hands its gate to
// the returned channel in the order the requests were issued.
func (r *fakeRobot) holdStatus() <-chan chan error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statusCalls = make(chan chan error, 16)
	return r.statusCalls
}

func (r *fakeRobot) Command(ctx context.Context, id string) error {
	r.mu.Lock()
	r.commands = append(r.commands, id)
	gate := r.gates[id]
	err := r.cmdErr[id]
	r.mu.Unlock()

	if gate == nil {
		return err
	}
	select {
	case err := <-gate:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *fakeRobot) setStatus(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statusErr = err
}

func (r *fakeRobot) failCommand(id string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cmdErr[id] = err
}

func (r *fakeRobot) gate(id string) chan error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch := make(chan error)
	r.gates[id] = ch
	return ch
}

func (r *fakeRobot) sent() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.commands...)
}

func (r *fakeRobot) pollCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.polls
}

// fakeView records what the controller writes. history keeps the
// command-related writes in order.
type fakeView struct {
	mu        sync.Mutex
	connected bool
	status    string
	command   string
	visible   bool
	active    map[string]bool
	history   []string
}

func newFakeView() *fakeView {
	return &fakeView{active: make(map[string]bool)}
}

func (v *fakeView) View(ids ...string) View {
	buttons := make([]Button, 0, len(ids))
	for _, id := range ids {
		buttons = append(buttons, fakeButton{v: v, id: id})
	}
	return View{
		Dot:              fakeDot{v},
		StatusText:       fakeStatus{v},
		LastCommand:      fakeCommand{v},
		CommandIndicator: fakeIndicator{v},
		Buttons:          buttons,
	}
}

func (v *fakeView) Status() (string, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.status, v.connected
}

func (v *fakeView) Command() (string, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.command, v.visible
}

func (v *fakeView) Active(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.active[id]
}

func (v *fakeView) History() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.history...)
}

type fakeDot struct{ v *fakeView }

func (d fakeDot) SetConnected(connected bool) {
	d.v.mu.Lock()
	defer d.v.mu.Unlock()
	d.v.connected = connected
}

type fakeStatus struct{ v *fakeView }

func (s fakeStatus) SetText(text string) {
	s.v.mu.Lock()
	defer s.v.mu.Unlock()
	s.v.status = text
}

type fakeCommand struct{ v *fakeView }

func (c fakeCommand) SetText(text string) {
	c.v.mu.Lock()
	defer c.v.mu.Unlock()
	c.v.command = text
	c.v.history = append(c.v.history, "text:"+text)
}

type fakeIndicator struct{ v *fakeView }

func (i fakeIndicator) SetVisible(visible bool) {
	i.v.mu.Lock()
	defer i.v.mu.Unlock()
	i.v.visible = visible
	i.v.history = append(i.v.history, fmt.Sprintf("visible:%t", visible))
}

type fakeButton struct {
	v  *fakeView
	id string
}

func (b fakeButton) ID() string { return b.id }

func (b fakeButton) SetActive(active bool) {
	b.v.mu.Lock()
	defer b.v.mu.Unlock()
	b.v.active[b.id] = active
	b.v.history = append(b.v.history, fmt.Sprintf("active:%s:%t", b.id, active))
}
