package dashboard

import (
	"context"
)

// runPollLoop checks the connection immediately and then on every tick,
// running queued events in between.
func (c *Controller) runPollLoop(ctx context.Context) error {
	ticker := c.clock.NewTicker(c.opts.PollInterval)
	defer ticker.Stop()

	c.checkConnection()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info().Msg("Stopping dashboard controller")
			return ctx.Err()
		case <-ticker.C():
			c.checkConnection()
		case fn := <-c.events:
			fn()
		}
	}
}
