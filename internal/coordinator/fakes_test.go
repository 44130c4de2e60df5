package coordinator_test

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/NamanBalaji/vidvault/internal/engine"
	"github.com/NamanBalaji/vidvault/internal/errors"
	"github.com/NamanBalaji/vidvault/internal/video"
)

type memStore struct {
	mu      sync.Mutex
	data    map[string]string
	failSet bool
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]string)}
}

func (m *memStore) Get(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.data[key]
}

func (m *memStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failSet {
		return stderrors.New("disk full")
	}

	m.data[key] = value

	return nil
}

type fakeEngine struct {
	mu        sync.Mutex
	starts    map[string]int
	started   []video.Entry
	paused    []string
	resumed   []string
	cancelled []string
	startErr  error
	pauseErr  map[string]error
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{starts: make(map[string]int), pauseErr: make(map[string]error)}
}

func (f *fakeEngine) Start(_ context.Context, entry video.Entry) (*engine.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.startErr != nil {
		return nil, f.startErr
	}

	f.starts[entry.ID]++
	f.started = append(f.started, entry)

	return &engine.Session{ID: entry.ID, Token: f.token(entry.ID)}, nil
}

// token must be called with f.mu held.
func (f *fakeEngine) token(id string) string {
	return fmt.Sprintf("%s-%d", id, f.starts[id])
}

func (f *fakeEngine) Token(id string) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.token(id)
}

func (f *fakeEngine) Pause(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.pauseErr[id]; err != nil {
		return err
	}

	f.paused = append(f.paused, id)

	return nil
}

func (f *fakeEngine) Resume(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.resumed = append(f.resumed, id)

	return nil
}

func (f *fakeEngine) Cancel(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.starts[id] == 0 {
		return errors.ErrNotFound
	}

	f.cancelled = append(f.cancelled, id)

	return nil
}

func (f *fakeEngine) Started() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.started)
}

// blockingDisk holds FreeSpaceBytes until release is closed.
type blockingDisk struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingDisk) FreeSpaceBytes(ctx context.Context) (int64, error) {
	close(b.entered)
	<-b.release

	return 1 << 40, nil
}

func (b *blockingDisk) TotalSpaceBytes(context.Context) (int64, error) {
	return 1 << 40, nil
}
