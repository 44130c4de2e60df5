package engine_test

import (
	"context"
	"os"
	"sync"

	"github.com/NamanBalaji/vidvault/internal/transfer"
)

// fakeTransfer is driven entirely by the test: progress is pushed through
// report and the outcome through complete or fail.
type fakeTransfer struct {
	source, dest string
	onProgress   transfer.ProgressFunc

	mu       sync.Mutex
	started  bool
	paused   bool
	canceled bool
	pauses   int
	resumes  int
	startErr error

	once sync.Once
	done chan transfer.Result
}

func (f *fakeTransfer) Start(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.startErr != nil {
		return f.startErr
	}

	f.started = true

	return nil
}

func (f *fakeTransfer) Pause() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.paused = true
	f.pauses++

	return nil
}

func (f *fakeTransfer) Resume(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.paused = false
	f.resumes++

	return nil
}

func (f *fakeTransfer) Cancel() error {
	f.mu.Lock()
	f.canceled = true
	f.mu.Unlock()

	f.deliver(transfer.Result{Path: f.dest, Err: transfer.ErrCancelled})

	return nil
}

func (f *fakeTransfer) Done() <-chan transfer.Result {
	return f.done
}

func (f *fakeTransfer) report(written, expected int64) {
	f.onProgress(written, expected)
}

// complete writes content to dest and reports success.
func (f *fakeTransfer) complete(content []byte) {
	if err := os.WriteFile(f.dest, content, 0o644); err != nil {
		panic(err)
	}

	f.deliver(transfer.Result{Path: f.dest, Size: int64(len(content))})
}

func (f *fakeTransfer) fail(err error) {
	f.deliver(transfer.Result{Path: f.dest, Err: err})
}

func (f *fakeTransfer) deliver(r transfer.Result) {
	f.once.Do(func() { f.done <- r })
}

type fakeOpener struct {
	mu        sync.Mutex
	transfers map[string]*fakeTransfer
	startErr  error
}

func newFakeOpener() *fakeOpener {
	return &fakeOpener{transfers: make(map[string]*fakeTransfer)}
}

func (o *fakeOpener) open(source, dest string, onProgress transfer.ProgressFunc) transfer.Transfer {
	o.mu.Lock()
	defer o.mu.Unlock()

	t := &fakeTransfer{
		source:     source,
		dest:       dest,
		onProgress: onProgress,
		startErr:   o.startErr,
		done:       make(chan transfer.Result, 1),
	}
	o.transfers[dest] = t

	return t
}

func (o *fakeOpener) get(dest string) *fakeTransfer {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.transfers[dest]
}
