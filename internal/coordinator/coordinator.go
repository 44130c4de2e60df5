// Package coordinator is the policy layer over the download engine. It gates
// new downloads, keeps the active set, persists completed downloads and fans
// lifecycle transitions out to every running transfer.
package coordinator

import (
	"context"
	"sort"
	"sync"

	"github.com/NamanBalaji/vidvault/internal/engine"
	"github.com/NamanBalaji/vidvault/internal/filesystem"
	"github.com/NamanBalaji/vidvault/internal/logger"
	"github.com/NamanBalaji/vidvault/internal/probe"
	"github.com/NamanBalaji/vidvault/internal/progress"
	"github.com/NamanBalaji/vidvault/internal/repository"
	"github.com/NamanBalaji/vidvault/internal/status"
	"github.com/NamanBalaji/vidvault/internal/video"
)

// DefaultMinFreeBytes is the free space a new download requires (0.1 GiB).
const DefaultMinFreeBytes int64 = 107374182

const defaultEventBuffer = 64

// Engine is the transfer mechanism the coordinator drives.
type Engine interface {
	Start(ctx context.Context, entry video.Entry) (*engine.Session, error)
	Pause(id string) error
	Resume(ctx context.Context, id string) error
	Cancel(id string) error
}

// Event is what subscribers observe. Coordinator events are authoritative:
// an engine event for an id that is no longer active is never forwarded.
type Event = engine.Event

type Option func(*Coordinator)

func WithMinFreeBytes(n int64) Option {
	return func(c *Coordinator) {
		c.minFree = n
	}
}

func WithFileSystem(fs filesystem.FileSystem) Option {
	return func(c *Coordinator) {
		c.fs = fs
	}
}

// WithEventBuffer sets the capacity of the Events channel. Progress events
// that do not fit are dropped; terminal events queue until delivered.
func WithEventBuffer(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.events = make(chan Event, n)
		}
	}
}

type Coordinator struct {
	store  repository.Store
	engine Engine
	disk   probe.ResourceProbe
	net    probe.NetworkProbe
	fs     filesystem.FileSystem

	minFree int64

	mu sync.Mutex
	// requested holds ids passing through the gates; active holds ids with a
	// live engine session mapped to its token. An id is never in both.
	requested  map[string]struct{}
	active     map[string]string
	paused     map[string]struct{}
	last       map[string]status.Status
	records    []video.Record
	nowPlaying string

	progress *progress.Table
	events   chan Event

	// pending holds terminal events that did not fit in events, in order.
	outMu     sync.Mutex
	pending   []Event
	pumping   bool
	done      chan struct{}
	closeOnce sync.Once
}

func New(store repository.Store, eng Engine, disk probe.ResourceProbe, net probe.NetworkProbe, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:     store,
		engine:    eng,
		disk:      disk,
		net:       net,
		fs:        filesystem.NewOSFileSystem(),
		minFree:   DefaultMinFreeBytes,
		requested: make(map[string]struct{}),
		active:    make(map[string]string),
		paused:    make(map[string]struct{}),
		last:      make(map[string]status.Status),
		records:   []video.Record{},
		progress:  progress.NewTable(),
		events:    make(chan Event, defaultEventBuffer),
		done:      make(chan struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// SetEngine attaches the engine after construction, for wiring where the
// engine needs the coordinator's HandleEvent.
func (c *Coordinator) SetEngine(eng Engine) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.engine = eng
}

func (c *Coordinator) eng() Engine {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.engine
}

// Load replaces the in-memory record list with the persisted one. Transfers
// never survive a restart, so the active set starts empty.
func (c *Coordinator) Load() {
	records := repository.LoadRecords(c.store)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.records = records
	logger.Infof("Loaded %d downloaded videos", len(records))
}

// Events delivers progress and terminal events.
func (c *Coordinator) Events() <-chan Event {
	return c.events
}

// Active returns the ids currently downloading, sorted.
func (c *Coordinator) Active() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]string, 0, len(c.active))
	for id := range c.active {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}

// Progress returns the displayed fraction for id. Downloaded videos report 1.
func (c *Coordinator) Progress(id string) (float64, bool) {
	if f, ok := c.progress.Get(id); ok {
		return f, true
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.findRecord(id) >= 0 {
		return 1, true
	}

	return 0, false
}

// Status returns the coarse lifecycle state of id.
func (c *Coordinator) Status(id string) status.Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.active[id]; ok {
		if _, p := c.paused[id]; p {
			return status.Paused
		}

		return status.Active
	}

	if _, ok := c.requested[id]; ok {
		return status.Requested
	}

	if c.findRecord(id) >= 0 {
		return status.Completed
	}

	if s, ok := c.last[id]; ok {
		return s
	}

	return status.Idle
}

// Downloaded returns a copy of the downloaded-video records.
func (c *Coordinator) Downloaded() []video.Record {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]video.Record(nil), c.records...)
}

// Record returns the downloaded record for id.
func (c *Coordinator) Record(id string) (video.Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.findRecord(id); i >= 0 {
		return c.records[i], true
	}

	return video.Record{}, false
}

// findRecord must be called with c.mu held.
func (c *Coordinator) findRecord(id string) int {
	for i, r := range c.records {
		if r.ID == id {
			return i
		}
	}

	return -1
}

// persist must be called with c.mu held so writes reach the store in the
// order they were made.
func (c *Coordinator) persist() error {
	return repository.SaveRecords(c.store, c.records)
}

// emit never blocks. Progress is dropped when the subscriber falls behind;
// terminal events are queued and delivered in order by pump.
func (c *Coordinator) emit(ev Event) {
	c.outMu.Lock()
	defer c.outMu.Unlock()

	if len(c.pending) == 0 {
		select {
		case c.events <- ev:
			return
		default:
		}
	}

	if !ev.Kind.Terminal() {
		logger.Debugf("Dropped %s event for %s: subscriber not keeping up", ev.Kind, ev.ID)
		return
	}

	c.pending = append(c.pending, ev)

	if !c.pumping {
		c.pumping = true
		go c.pump()
	}
}

func (c *Coordinator) pump() {
	for {
		c.outMu.Lock()
		if len(c.pending) == 0 {
			c.pumping = false
			c.outMu.Unlock()

			return
		}

		ev := c.pending[0]
		c.outMu.Unlock()

		select {
		case c.events <- ev:
		case <-c.done:
			return
		}

		c.outMu.Lock()
		c.pending = c.pending[1:]
		c.outMu.Unlock()
	}
}

// Close stops delivery of queued terminal events. Sessions are not touched.
func (c *Coordinator) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}
