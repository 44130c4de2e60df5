package transfer

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cavaliergopher/grab/v3"

	"github.com/NamanBalaji/vidvault/internal/logger"
	"github.com/NamanBalaji/vidvault/internal/status"
	httpPkg "github.com/NamanBalaji/vidvault/pkg/http"
)

const defaultProgressInterval = 250 * time.Millisecond

// NewGrabOpener returns an Opener whose transfers share one grab client built
// on top of client's transport.
func NewGrabOpener(client *httpPkg.Client, interval time.Duration) Opener {
	gc := grab.NewClient()
	gc.UserAgent = httpPkg.DefaultUserAgent

	if client != nil {
		gc.HTTPClient = client.Client
	}

	if interval <= 0 {
		interval = defaultProgressInterval
	}

	return func(source, dest string, onProgress ProgressFunc) Transfer {
		return newGrabTransfer(gc, source, dest, onProgress, interval)
	}
}

// GrabTransfer is a Transfer backed by grab. A pause cancels the in-flight
// request and keeps the partial file; resume issues a new request for the
// same destination, which grab continues with a range request when the
// server allows it.
type GrabTransfer struct {
	client     *grab.Client
	source     string
	dest       string
	onProgress ProgressFunc
	interval   time.Duration

	mu     sync.Mutex
	state  status.Status
	run    uint64
	cancel context.CancelFunc

	finished atomic.Bool
	done     chan Result
}

func newGrabTransfer(client *grab.Client, source, dest string, onProgress ProgressFunc, interval time.Duration) *GrabTransfer {
	return &GrabTransfer{
		client:     client,
		source:     source,
		dest:       dest,
		onProgress: onProgress,
		interval:   interval,
		state:      status.Idle,
		done:       make(chan Result, 1),
	}
}

func (t *GrabTransfer) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != status.Idle {
		return ErrAlreadyStarted
	}

	t.launch(ctx)

	return nil
}

func (t *GrabTransfer) Pause() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != status.Active {
		return nil
	}

	t.state = status.Paused
	t.stopRun()

	logger.Debugf("Paused transfer %s", t.dest)

	return nil
}

func (t *GrabTransfer) Resume(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != status.Paused {
		return nil
	}

	logger.Debugf("Resuming transfer %s", t.dest)
	t.launch(ctx)

	return nil
}

func (t *GrabTransfer) Cancel() error {
	t.mu.Lock()

	if status.IsTerminal(t.state) {
		t.mu.Unlock()
		return nil
	}

	running := t.state == status.Active
	t.state = status.Cancelled
	t.stopRun()
	t.mu.Unlock()

	// an active run reports the cancellation itself when its request unwinds
	if !running {
		t.finish(Result{Path: t.dest, Err: ErrCancelled})
	}

	return nil
}

func (t *GrabTransfer) Done() <-chan Result {
	return t.done
}

// launch must be called with t.mu held.
func (t *GrabTransfer) launch(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)

	t.run++
	t.cancel = cancel
	t.state = status.Active

	go t.process(runCtx, t.run)
}

// stopRun must be called with t.mu held.
func (t *GrabTransfer) stopRun() {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}

func (t *GrabTransfer) process(ctx context.Context, run uint64) {
	req, err := grab.NewRequest(t.dest, t.source)
	if err != nil {
		t.settle(run, nil, fmt.Errorf("invalid transfer request: %w", err))
		return
	}

	resp := t.client.Do(req.WithContext(ctx))

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.report(resp)
		case <-resp.Done:
			t.report(resp)
			t.settle(run, resp, resp.Err())

			return
		}
	}
}

func (t *GrabTransfer) report(resp *grab.Response) {
	if t.onProgress == nil {
		return
	}

	t.onProgress(resp.BytesComplete(), resp.Size())
}

// settle turns the end of one run into the transfer's outcome. A run that
// ended because of pause, or that was superseded by a newer run, delivers
// nothing.
func (t *GrabTransfer) settle(run uint64, resp *grab.Response, err error) {
	t.mu.Lock()

	if run != t.run {
		t.mu.Unlock()
		return
	}

	switch t.state {
	case status.Paused:
		t.mu.Unlock()
		return
	case status.Cancelled:
		t.mu.Unlock()
		t.finish(Result{Path: t.dest, Err: ErrCancelled})

		return
	}

	if err != nil {
		t.state = status.Failed
	} else {
		t.state = status.Completed
	}

	t.stopRun()
	t.mu.Unlock()

	if err != nil {
		logger.Errorf("Transfer %s -> %s failed: %v", t.source, t.dest, err)
		t.finish(Result{Path: t.dest, Err: err})

		return
	}

	logger.Infof("Transfer %s -> %s complete (%d bytes)", t.source, resp.Filename, resp.BytesComplete())
	t.finish(Result{Path: resp.Filename, Size: resp.BytesComplete()})
}

func (t *GrabTransfer) finish(r Result) {
	if !t.finished.CompareAndSwap(false, true) {
		return
	}

	t.done <- r
}
