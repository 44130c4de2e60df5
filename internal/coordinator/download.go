package coordinator

import (
	"context"
	"fmt"

	"github.com/NamanBalaji/vidvault/internal/engine"
	"github.com/NamanBalaji/vidvault/internal/errors"
	"github.com/NamanBalaji/vidvault/internal/filesystem"
	"github.com/NamanBalaji/vidvault/internal/logger"
	"github.com/NamanBalaji/vidvault/internal/status"
	"github.com/NamanBalaji/vidvault/internal/video"
)

// RequestDownload runs the gates for entry and starts its transfer. Gate
// failures return synchronously and leave the active set unchanged.
func (c *Coordinator) RequestDownload(ctx context.Context, entry video.Entry) error {
	const op = "request download"

	id := entry.ID

	c.mu.Lock()

	_, requested := c.requested[id]
	_, active := c.active[id]

	switch {
	case requested || active:
		c.mu.Unlock()
		return errors.Wrap(op, id, errors.ErrAlreadyDownloading)
	case c.findRecord(id) >= 0:
		c.mu.Unlock()
		return errors.Wrap(op, id, errors.ErrAlreadyDownloaded)
	case !entry.HasSource():
		c.mu.Unlock()
		return errors.Wrap(op, id, errors.ErrSourceUnavailable)
	}

	c.requested[id] = struct{}{}
	c.mu.Unlock()

	if err := c.gate(ctx, entry); err != nil {
		c.mu.Lock()
		delete(c.requested, id)
		c.mu.Unlock()

		return errors.Wrap(op, id, err)
	}

	c.mu.Lock()
	delete(c.requested, id)
	c.active[id] = ""
	delete(c.paused, id)
	c.progress.Set(id, 0)
	c.mu.Unlock()

	s, err := c.eng().Start(ctx, entry)
	if err != nil {
		c.mu.Lock()
		if tok, ok := c.active[id]; ok && tok == "" {
			delete(c.active, id)
			c.progress.Delete(id)
			c.last[id] = status.Failed
		}
		c.mu.Unlock()

		logger.Errorf("Engine refused download %s: %v", id, err)

		return errors.Wrap(op, id, err)
	}

	c.mu.Lock()
	if tok, ok := c.active[id]; ok && tok == "" {
		c.active[id] = s.Token
	}
	c.mu.Unlock()

	logger.Infof("Download %s requested (session %s)", id, s.Token)

	return nil
}

// gate runs the probe checks. Probe failures fall back to the documented
// defaults: unknown storage is sufficient, unknown connectivity is offline.
func (c *Coordinator) gate(ctx context.Context, entry video.Entry) error {
	free, err := c.disk.FreeSpaceBytes(ctx)
	switch {
	case err != nil:
		logger.Warnf("Storage probe failed, assuming sufficient space: %v", err)
	case free < c.minFree:
		logger.Warnf("Refusing %s: %d bytes free, %d required", entry.ID, free, c.minFree)
		return fmt.Errorf("%w: %d bytes free", errors.ErrInsufficientStorage, free)
	}

	// a local source is already cached and needs no network
	if !filesystem.IsLocalURI(entry.SourceURL) {
		connected, err := c.net.IsConnected(ctx)
		if err != nil {
			logger.Warnf("Network probe failed, assuming offline: %v", err)
			connected = false
		}

		if !connected {
			return errors.ErrOffline
		}
	}

	return ctx.Err()
}

// HandleEvent applies an engine event. Whichever terminal event is applied
// first for a session wins; later ones are no-ops.
func (c *Coordinator) HandleEvent(ev engine.Event) {
	c.mu.Lock()

	tok, ok := c.active[ev.ID]
	if !ok || (tok != "" && ev.Token != "" && tok != ev.Token) {
		stale := !ok && ev.Kind == engine.Completed && c.findRecord(ev.ID) < 0
		c.mu.Unlock()

		if stale {
			// the download was cancelled before its completion was recorded
			c.discardFile(ev.Record)
		}

		return
	}

	switch ev.Kind {
	case engine.Progress:
		c.progress.Set(ev.ID, ev.Fraction)
		c.mu.Unlock()

		c.emit(ev)

		return

	case engine.Completed:
		c.release(ev.ID, status.Completed)

		if i := c.findRecord(ev.ID); i >= 0 {
			c.records[i] = ev.Record
		} else {
			c.records = append(c.records, ev.Record)
		}

		if err := c.persist(); err != nil {
			// the file stays on disk; the record is kept in memory
			logger.Errorf("Failed to persist record for %s: %v", ev.ID, err)
			ev.Err = errors.Wrap("persist", ev.ID, fmt.Errorf("%w: %w", errors.ErrPersistenceFailed, err))
		}

	case engine.Cancelled:
		c.release(ev.ID, status.Cancelled)

	case engine.Failed:
		c.release(ev.ID, status.Failed)
	}

	c.mu.Unlock()

	c.emit(ev)
}

// release drops id from the active set and clears its progress. Must be
// called with c.mu held.
func (c *Coordinator) release(id string, s status.Status) {
	delete(c.active, id)
	delete(c.paused, id)
	c.progress.Delete(id)
	c.last[id] = s
}

func (c *Coordinator) discardFile(r video.Record) {
	if r.URI == "" {
		return
	}

	path := filesystem.PathFromURI(r.URI)
	if err := c.fs.RemoveIfExists(path); err != nil {
		logger.Warnf("Failed to discard cancelled download %s: %v", path, err)
	}
}

// CancelDownload aborts the download for id. Coordinator state is cleaned up
// even when the engine reports a problem.
func (c *Coordinator) CancelDownload(id string) error {
	c.mu.Lock()

	tok, ok := c.active[id]
	if !ok {
		c.mu.Unlock()
		return errors.Wrap("cancel download", id, errors.ErrNotFound)
	}

	c.release(id, status.Cancelled)
	c.mu.Unlock()

	if err := c.eng().Cancel(id); err != nil {
		logger.Warnf("Engine cancel for %s: %v", id, err)
	}

	c.emit(Event{Kind: engine.Cancelled, ID: id, Token: tok})

	return nil
}
