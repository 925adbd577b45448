package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/yourusername/robot-dashboard/internal/metrics"
	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/utils/clock"
)

// Robot is the remote end the dashboard talks to
type Robot interface {
	Status(ctx context.Context) error
	Command(ctx context.Context, id string) error
}

// Options configures a Controller. Zero durations fall back to the defaults.
type Options struct {
	PollInterval   time.Duration
	CommandDisplay time.Duration
	ButtonFlash    time.Duration

	// DiscardStale drops a response when a response to a later request on
	// the same endpoint has already been applied. When false, whichever
	// response arrives last wins.
	DiscardStale bool

	Clock  clock.WithTickerAndDelayedExecution
	Logger zerolog.Logger
}

const (
	DefaultPollInterval   = 100 * time.Millisecond
	DefaultCommandDisplay = time.Second
	DefaultButtonFlash    = 200 * time.Millisecond

	eventQueueSize = 256
)

// Snapshot is a point-in-time copy of the dashboard state
type Snapshot struct {
	Connected      bool
	Polled         bool // at least one poll has completed
	LastPoll       time.Time
	LastError      string
	LastCommand    string
	CommandVisible bool
	Polls          uint64
	Commands       uint64
}

// Controller keeps the view in sync with the robot. All state and every view
// mutation is owned by the goroutine running Run; requests and timers post
// their results back to it through the event queue.
type Controller struct {
	robot   Robot
	view    View
	buttons map[string]Button
	opts    Options
	clock   clock.WithTickerAndDelayedExecution
	logger  zerolog.Logger

	events chan func()
	done   chan struct{}
	once   sync.Once

	// loop-owned
	ctx           context.Context
	statusIssued  uint64
	statusApplied uint64
	cmdIssued     uint64
	cmdApplied    uint64
	hideTimer     clock.Timer
	hideGen       uint64
	flashTimers   map[string]clock.Timer
	flashGen      map[string]uint64

	mu   sync.RWMutex
	snap Snapshot
}

// New creates a dashboard controller bound to the given view handles
func New(robot Robot, view View, opts Options) (*Controller, error) {
	if robot == nil {
		return nil, fmt.Errorf("robot is required")
	}
	if err := view.validate(); err != nil {
		return nil, err
	}

	buttons := make(map[string]Button, len(view.Buttons))
	seen := sets.New[string]()
	for _, b := range view.Buttons {
		id := b.ID()
		if id == "" {
			return nil, fmt.Errorf("view: button id must not be empty")
		}
		if seen.Has(id) {
			return nil, fmt.Errorf("view: duplicate button id: %s", id)
		}
		seen.Insert(id)
		buttons[id] = b
	}

	if opts.PollInterval == 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.CommandDisplay == 0 {
		opts.CommandDisplay = DefaultCommandDisplay
	}
	if opts.ButtonFlash == 0 {
		opts.ButtonFlash = DefaultButtonFlash
	}
	if opts.PollInterval < 0 || opts.CommandDisplay < 0 || opts.ButtonFlash < 0 {
		return nil, fmt.Errorf("durations must be positive")
	}

	clk := opts.Clock
	if clk == nil {
		clk = clock.RealClock{}
	}

	return &Controller{
		robot:       robot,
		view:        view,
		buttons:     buttons,
		opts:        opts,
		clock:       clk,
		logger:      opts.Logger.With().Str("component", "controller").Logger(),
		events:      make(chan func(), eventQueueSize),
		done:        make(chan struct{}),
		flashTimers: make(map[string]clock.Timer),
		flashGen:    make(map[string]uint64),
	}, nil
}

// Run polls the robot until ctx is cancelled. It checks the connection once
// immediately and then on every poll interval. Run may be called only once.
func (c *Controller) Run(ctx context.Context) error {
	started := false
	c.once.Do(func() { started = true })
	if !started {
		return fmt.Errorf("controller already started")
	}

	c.ctx = ctx
	defer close(c.done)
	defer c.stopTimers()

	c.logger.Info().
		Dur("poll_interval", c.opts.PollInterval).
		Dur("command_display", c.opts.CommandDisplay).
		Dur("button_flash", c.opts.ButtonFlash).
		Bool("discard_stale", c.opts.DiscardStale).
		Int("buttons", len(c.buttons)).
		Msg("Starting dashboard controller")

	return c.runPollLoop(ctx)
}

// Press sends the command bound to id. It returns once the press is queued;
// the outcome shows up on the view.
func (c *Controller) Press(id string) {
	c.post(func() { c.issueCommand(id) })
}

// Snapshot returns a copy of the current state
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// post queues fn for the loop goroutine. Events posted after Run has
// returned are dropped.
func (c *Controller) post(fn func()) {
	select {
	case c.events <- fn:
	case <-c.done:
	}
}

func (c *Controller) update(fn func(s *Snapshot)) {
	c.mu.Lock()
	fn(&c.snap)
	c.mu.Unlock()
}

// checkConnection issues a status request. Overlapping requests are not
// cancelled.
func (c *Controller) checkConnection() {
	c.statusIssued++
	seq := c.statusIssued
	ctx := c.ctx

	go func() {
		err := c.robot.Status(ctx)
		c.post(func() { c.applyStatus(seq, err) })
	}()
}

func (c *Controller) applyStatus(seq uint64, err error) {
	if c.opts.DiscardStale && seq < c.statusApplied {
		metrics.StaleResponsesTotal.WithLabelValues("status").Inc()
		c.logger.Debug().Uint64("seq", seq).Uint64("applied", c.statusApplied).Msg("Discarding stale status response")
		return
	}
	if seq > c.statusApplied {
		c.statusApplied = seq
	}

	connected := err == nil
	prev := c.Snapshot()

	if connected {
		metrics.PollsTotal.WithLabelValues("connected").Inc()
		metrics.Connected.Set(1)
		metrics.LastConnectedTimestamp.Set(float64(c.clock.Now().Unix()))
	} else {
		metrics.PollsTotal.WithLabelValues("disconnected").Inc()
		metrics.Connected.Set(0)
		c.logger.Debug().Err(err).Msg("Status poll failed")
	}

	if !prev.Polled || prev.Connected != connected {
		evt := c.logger.Info().Bool("connected", connected)
		if err != nil {
			evt = evt.Err(err)
		}
		evt.Msg("Robot connection changed")
	}

	c.update(func(s *Snapshot) {
		s.Connected = connected
		s.Polled = true
		s.LastPoll = c.clock.Now()
		s.Polls++
		s.LastError = ""
		if err != nil {
			s.LastError = err.Error()
		}
	})

	c.view.Dot.SetConnected(connected)
	if connected {
		c.view.StatusText.SetText(TextConnected)
	} else {
		c.view.StatusText.SetText(TextDisconnected)
	}
}

// issueCommand sends a command request. A later press does not cancel an
// earlier one still in flight.
func (c *Controller) issueCommand(id string) {
	c.cmdIssued++
	seq := c.cmdIssued
	ctx := c.ctx

	c.logger.Debug().Str("command", id).Uint64("seq", seq).Msg("Sending command")

	go func() {
		err := c.robot.Command(ctx, id)
		c.post(func() { c.applyCommand(seq, id, err) })
	}()
}

func (c *Controller) applyCommand(seq uint64, id string, err error) {
	if c.opts.DiscardStale && seq < c.cmdApplied {
		metrics.StaleResponsesTotal.WithLabelValues("command").Inc()
		c.logger.Debug().Str("command", id).Uint64("seq", seq).Msg("Discarding stale command response")
		return
	}
	if seq > c.cmdApplied {
		c.cmdApplied = seq
	}

	label := id
	if err != nil {
		label = TextCommandError
		metrics.CommandsTotal.WithLabelValues(c.metricLabel(id), "error").Inc()
		c.logger.Warn().Err(err).Str("command", id).Msg("Command failed")
	} else {
		metrics.CommandsTotal.WithLabelValues(c.metricLabel(id), "success").Inc()
		c.logger.Info().Str("command", id).Msg("Command sent")
	}

	if err == nil {
		c.flashButton(id)
	}
	c.showCommand(label)

	c.update(func(s *Snapshot) {
		s.LastCommand = label
		s.CommandVisible = true
		s.Commands++
	})
}

// metricLabel keeps the command label bounded to the configured buttons.
// Ids typed in headless mode can be anything.
func (c *Controller) metricLabel(id string) string {
	if _, ok := c.buttons[id]; ok {
		return id
	}
	return metrics.OtherCommand
}

// showCommand displays label and (re)arms the hide timer. The hide timer
// is armed before the view changes so a visible indicator always has a
// pending hide.
func (c *Controller) showCommand(label string) {
	if c.hideTimer != nil {
		c.hideTimer.Stop()
	}
	c.hideGen++
	gen := c.hideGen
	c.hideTimer = c.clock.AfterFunc(c.opts.CommandDisplay, func() {
		c.post(func() { c.hideCommand(gen) })
	})

	c.view.LastCommand.SetText(label)
	c.view.CommandIndicator.SetVisible(true)
}

func (c *Controller) hideCommand(gen uint64) {
	// A timer stopped too late still delivers; only the latest one counts.
	if gen != c.hideGen {
		return
	}
	c.hideTimer = nil
	c.update(func(s *Snapshot) { s.CommandVisible = false })
	c.view.CommandIndicator.SetVisible(false)
}

func (c *Controller) flashButton(id string) {
	b, ok := c.buttons[id]
	if !ok {
		return
	}

	if t := c.flashTimers[id]; t != nil {
		t.Stop()
	}
	c.flashGen[id]++
	gen := c.flashGen[id]
	c.flashTimers[id] = c.clock.AfterFunc(c.opts.ButtonFlash, func() {
		c.post(func() { c.unflashButton(id, gen) })
	})

	b.SetActive(true)
}

func (c *Controller) unflashButton(id string, gen uint64) {
	if gen != c.flashGen[id] {
		return
	}
	delete(c.flashTimers, id)
	c.buttons[id].SetActive(false)
}

func (c *Controller) stopTimers() {
	if c.hideTimer != nil {
		c.hideTimer.Stop()
	}
	for _, t := range c.flashTimers {
		t.Stop()
	}
}
