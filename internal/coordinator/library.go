package coordinator

import (
	"context"

	"github.com/NamanBalaji/vidvault/internal/errors"
	"github.com/NamanBalaji/vidvault/internal/filesystem"
	"github.com/NamanBalaji/vidvault/internal/logger"
	"github.com/NamanBalaji/vidvault/internal/video"
)

// DeleteDownloaded removes the record for id and its file. A file that is
// already gone is not an error.
func (c *Coordinator) DeleteDownloaded(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.findRecord(id)
	if i < 0 {
		return errors.Wrap("delete download", id, errors.ErrNotFound)
	}

	rec := c.records[i]

	path := filesystem.PathFromURI(rec.URI)
	if err := c.fs.RemoveIfExists(path); err != nil {
		logger.Warnf("Failed to delete %s: %v", path, err)
	}

	c.records = append(c.records[:i:i], c.records[i+1:]...)

	if err := c.persist(); err != nil {
		logger.Errorf("Failed to persist deletion of %s: %v", id, err)
	}

	if c.nowPlaying == id {
		c.nowPlaying = ""
	}

	delete(c.last, id)
	logger.Infof("Deleted downloaded video %s", id)

	return nil
}

// PruneMissing drops every record whose file no longer exists and returns
// the removed ids.
func (c *Coordinator) PruneMissing() ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var (
		kept    = make([]video.Record, 0, len(c.records))
		removed []string
	)

	for _, r := range c.records {
		exists, err := c.fs.FileExists(filesystem.PathFromURI(r.URI))
		if err != nil {
			logger.Warnf("Could not check %s, keeping record: %v", r.URI, err)
			kept = append(kept, r)

			continue
		}

		if !exists {
			removed = append(removed, r.ID)

			if c.nowPlaying == r.ID {
				c.nowPlaying = ""
			}

			continue
		}

		kept = append(kept, r)
	}

	if len(removed) == 0 {
		return nil, nil
	}

	c.records = kept

	if err := c.persist(); err != nil {
		return removed, errors.Wrap("prune", "", errors.Join(errors.ErrPersistenceFailed, err))
	}

	logger.Infof("Pruned %d records with missing files", len(removed))

	return removed, nil
}

// PlaybackResolve returns the URI to play entry from. A downloaded video is
// always played locally; if its file is gone the result is ErrFileMissing and
// streaming is not attempted.
func (c *Coordinator) PlaybackResolve(ctx context.Context, entry video.Entry) (string, error) {
	const op = "playback"

	if rec, ok := c.Record(entry.ID); ok {
		exists, err := c.fs.FileExists(filesystem.PathFromURI(rec.URI))
		if err != nil || !exists {
			if err != nil {
				logger.Warnf("Could not check %s: %v", rec.URI, err)
			}

			return "", errors.Wrap(op, entry.ID, errors.ErrFileMissing)
		}

		return rec.URI, nil
	}

	if !entry.HasSource() {
		return "", errors.Wrap(op, entry.ID, errors.ErrSourceUnavailable)
	}

	if filesystem.IsLocalURI(entry.SourceURL) {
		return entry.SourceURL, nil
	}

	connected, err := c.net.IsConnected(ctx)
	if err != nil {
		logger.Warnf("Network probe failed, assuming offline: %v", err)
	}

	if err != nil || !connected {
		return "", errors.Wrap(op, entry.ID, errors.ErrOffline)
	}

	return entry.SourceURL, nil
}

// Play resolves entry and makes it the now-playing item.
func (c *Coordinator) Play(ctx context.Context, entry video.Entry) (string, error) {
	uri, err := c.PlaybackResolve(ctx, entry)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.nowPlaying = entry.ID
	c.mu.Unlock()

	return uri, nil
}

// NowPlaying returns the id of the item being played.
func (c *Coordinator) NowPlaying() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.nowPlaying, c.nowPlaying != ""
}

func (c *Coordinator) ClearNowPlaying() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nowPlaying = ""
}

// StorageInfo is the device capacity shown to the user.
type StorageInfo struct {
	FreeBytes  int64
	TotalBytes int64
}

const bytesPerGB = 1 << 30

func (s StorageInfo) FreeGB() float64 {
	return float64(s.FreeBytes) / bytesPerGB
}

func (s StorageInfo) TotalGB() float64 {
	return float64(s.TotalBytes) / bytesPerGB
}

// StorageInfo queries the resource probe. Failures report zeros.
func (c *Coordinator) StorageInfo(ctx context.Context) StorageInfo {
	free, err := c.disk.FreeSpaceBytes(ctx)
	if err != nil {
		logger.Warnf("Failed to read free space: %v", err)
		return StorageInfo{}
	}

	total, err := c.disk.TotalSpaceBytes(ctx)
	if err != nil {
		logger.Warnf("Failed to read total space: %v", err)
		return StorageInfo{}
	}

	return StorageInfo{FreeBytes: free, TotalBytes: total}
}

// LowOnSpace reports whether a new download would currently be refused.
func (c *Coordinator) LowOnSpace(ctx context.Context) bool {
	free, err := c.disk.FreeSpaceBytes(ctx)
	return err == nil && free < c.minFree
}
