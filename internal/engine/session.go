package engine

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/NamanBalaji/vidvault/internal/transfer"
	"github.com/NamanBalaji/vidvault/internal/video"
)

// Session is one in-flight transfer. It lives only in the engine's side
// table and is dropped on its terminal outcome.
type Session struct {
	ID        string
	Token     string
	Path      string
	Entry     video.Entry
	StartedAt time.Time

	transfer transfer.Transfer
	fraction atomic.Uint64
	paused   atomic.Bool
	finished atomic.Bool
	// cancelled is set when Cancel claimed the terminal outcome.
	cancelled atomic.Bool
}

// Fraction is the last reported progress in [0, 1].
func (s *Session) Fraction() float64 {
	return math.Float64frombits(s.fraction.Load())
}

func (s *Session) Paused() bool {
	return s.paused.Load()
}

func (s *Session) setFraction(f float64) {
	s.fraction.Store(math.Float64bits(f))
}

// claim marks the session finished. Only the first caller wins.
func (s *Session) claim() bool {
	return s.finished.CompareAndSwap(false, true)
}
