package coordinator

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/NamanBalaji/vidvault/internal/errors"
	"github.com/NamanBalaji/vidvault/internal/logger"
)

// PauseAll pauses every download active when it is called. Every id is
// attempted; failures are logged and returned joined.
func (c *Coordinator) PauseAll(ctx context.Context) error {
	return c.fanOut(ctx, "pause", func(_ context.Context, id string) error {
		if err := c.eng().Pause(id); err != nil {
			return err
		}

		c.mu.Lock()
		if _, ok := c.active[id]; ok {
			c.paused[id] = struct{}{}
		}
		c.mu.Unlock()

		return nil
	})
}

// ResumeAll resumes every download active when it is called.
func (c *Coordinator) ResumeAll(ctx context.Context) error {
	return c.fanOut(ctx, "resume", func(ctx context.Context, id string) error {
		if err := c.eng().Resume(ctx, id); err != nil {
			return err
		}

		c.mu.Lock()
		delete(c.paused, id)
		c.mu.Unlock()

		return nil
	})
}

// fanOut runs fn for a snapshot of the active set. Tasks never fail the
// group, so one error cannot stop the others.
func (c *Coordinator) fanOut(ctx context.Context, op string, fn func(context.Context, string) error) error {
	ids := c.Active()
	if len(ids) == 0 {
		return nil
	}

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)

	for _, id := range ids {
		g.Go(func() error {
			if err := fn(ctx, id); err != nil {
				logger.Warnf("Failed to %s download %s: %v", op, id, err)

				mu.Lock()
				errs = append(errs, errors.Wrap(op, id, err))
				mu.Unlock()
			}

			return nil
		})
	}

	_ = g.Wait()

	logger.Infof("%s fan-out over %d downloads, %d failed", op, len(ids), len(errs))

	return errors.Join(errs...)
}
