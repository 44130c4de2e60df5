// Package engine runs one resumable transfer per video and reports progress
// and terminal outcomes. It never persists anything itself.
package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/NamanBalaji/vidvault/internal/errors"
	"github.com/NamanBalaji/vidvault/internal/filesystem"
	"github.com/NamanBalaji/vidvault/internal/logger"
	"github.com/NamanBalaji/vidvault/internal/progress"
	"github.com/NamanBalaji/vidvault/internal/transfer"
	"github.com/NamanBalaji/vidvault/internal/video"
)

type Option func(*Engine)

// WithFileSystem replaces the filesystem used for sizing and cleanup.
func WithFileSystem(fs filesystem.FileSystem) Option {
	return func(e *Engine) {
		e.fs = fs
	}
}

// WithClock replaces time.Now for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

type Engine struct {
	dir    string
	open   transfer.Opener
	notify func(Event)
	fs     filesystem.FileSystem
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// New creates an engine writing into dir. notify receives every event; it is
// called from transfer goroutines and must not block for long.
func New(dir string, open transfer.Opener, notify func(Event), opts ...Option) *Engine {
	if notify == nil {
		notify = func(Event) {}
	}

	e := &Engine{
		dir:      dir,
		open:     open,
		notify:   notify,
		fs:       filesystem.NewOSFileSystem(),
		now:      time.Now,
		sessions: make(map[string]*Session),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

func (e *Engine) Dir() string {
	return e.dir
}

// PathFor returns the deterministic local path for entry.
func (e *Engine) PathFor(entry video.Entry) string {
	return PathFor(e.dir, entry)
}

// Start begins downloading entry and returns without waiting for data.
func (e *Engine) Start(ctx context.Context, entry video.Entry) (*Session, error) {
	if !entry.HasSource() {
		return nil, errors.Wrap("start", entry.ID, errors.ErrInvalidSource)
	}

	if err := e.fs.EnsureDirectory(e.dir); err != nil {
		return nil, errors.Wrap("start", entry.ID, fmt.Errorf("%w: %w", errors.ErrTransferFailed, err))
	}

	e.mu.Lock()

	if _, ok := e.sessions[entry.ID]; ok {
		e.mu.Unlock()
		return nil, errors.Wrap("start", entry.ID, errors.ErrAlreadyActive)
	}

	s := &Session{
		ID:        entry.ID,
		Token:     uuid.NewString(),
		Path:      e.PathFor(entry),
		Entry:     entry,
		StartedAt: e.now(),
	}
	s.transfer = e.open(entry.SourceURL, s.Path, func(written, expected int64) {
		e.onProgress(s, written, expected)
	})
	e.sessions[entry.ID] = s

	e.mu.Unlock()

	// the transfer outlives the request that started it
	if err := s.transfer.Start(context.WithoutCancel(ctx)); err != nil {
		e.drop(s)
		return nil, errors.Wrap("start", entry.ID, fmt.Errorf("%w: %w", errors.ErrTransferFailed, err))
	}

	logger.Infof("Started download %s (session %s) -> %s", s.ID, s.Token, s.Path)

	go e.watch(s)

	return s, nil
}

// Pause suspends the session for id. Unknown ids are ignored.
func (e *Engine) Pause(id string) error {
	s := e.session(id)
	if s == nil {
		return nil
	}

	if err := s.transfer.Pause(); err != nil {
		return errors.Wrap("pause", id, err)
	}

	s.paused.Store(true)
	logger.Debugf("Paused download %s", id)

	return nil
}

// Resume continues the session for id. Unknown ids are ignored.
func (e *Engine) Resume(ctx context.Context, id string) error {
	s := e.session(id)
	if s == nil {
		return nil
	}

	if err := s.transfer.Resume(context.WithoutCancel(ctx)); err != nil {
		return errors.Wrap("resume", id, err)
	}

	s.paused.Store(false)
	logger.Debugf("Resumed download %s", id)

	return nil
}

// Cancel aborts the session for id and removes any partial file. The session
// is dropped regardless of how cleanup goes.
func (e *Engine) Cancel(id string) error {
	s := e.session(id)
	if s == nil || !s.claim() {
		return errors.Wrap("cancel", id, errors.ErrNotFound)
	}

	s.cancelled.Store(true)
	e.drop(s)

	if err := s.transfer.Cancel(); err != nil {
		logger.Warnf("Transfer cancel for %s reported: %v", id, err)
	}

	e.removePartial(s)

	logger.Infof("Cancelled download %s", id)
	e.notify(Event{Kind: Cancelled, ID: id, Token: s.Token, Fraction: s.Fraction()})

	return nil
}

// Session returns the live session for id, or nil.
func (e *Engine) Session(id string) *Session {
	return e.session(id)
}

// Active lists the ids with a live session in sorted order.
func (e *Engine) Active() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	ids := make([]string, 0, len(e.sessions))
	for id := range e.sessions {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}

func (e *Engine) session(id string) *Session {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.sessions[id]
}

// drop removes s from the side table if it is still the registered session.
func (e *Engine) drop(s *Session) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.sessions[s.ID] == s {
		delete(e.sessions, s.ID)
	}
}

func (e *Engine) onProgress(s *Session, written, expected int64) {
	if s.finished.Load() {
		return
	}

	f := progress.Fraction(written, expected)
	s.setFraction(f)

	e.notify(Event{Kind: Progress, ID: s.ID, Token: s.Token, Fraction: f})
}

func (e *Engine) watch(s *Session) {
	r := <-s.transfer.Done()

	if !s.claim() {
		// a cancel won; the transfer may have written more since cleanup ran
		if s.cancelled.Load() {
			e.removePartial(s)
		}

		return
	}

	e.drop(s)

	if r.Err != nil {
		logger.Errorf("Download %s failed: %v", s.ID, r.Err)
		e.notify(Event{
			Kind:     Failed,
			ID:       s.ID,
			Token:    s.Token,
			Fraction: s.Fraction(),
			Err:      errors.Wrap("download", s.ID, fmt.Errorf("%w: %w", errors.ErrTransferFailed, r.Err)),
		})

		return
	}

	path := r.Path
	if path == "" {
		path = s.Path
	}

	size, err := e.fs.FileSize(path)
	if err != nil {
		logger.Warnf("Could not stat completed download %s: %v", path, err)
		size = r.Size
	}

	record := video.NewRecord(s.Entry, filesystem.ToURI(path), size, e.now())
	s.setFraction(1)

	logger.Infof("Completed download %s (%s)", s.ID, record.FileSize)
	e.notify(Event{Kind: Completed, ID: s.ID, Token: s.Token, Fraction: 1, Record: record})
}

func (e *Engine) removePartial(s *Session) {
	if err := e.fs.RemoveIfExists(s.Path); err != nil {
		logger.Warnf("Failed to remove partial file %s: %v", s.Path, err)
	}
}
