package engine

import "github.com/NamanBalaji/vidvault/internal/video"

type EventKind int

const (
	Progress EventKind = iota
	Completed
	Cancelled
	Failed
)

func (k EventKind) String() string {
	switch k {
	case Progress:
		return "progress"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether k ends a session.
func (k EventKind) Terminal() bool {
	return k != Progress
}

// Event is emitted by the engine for a session. Record is set for Completed,
// Err for Failed.
type Event struct {
	Kind     EventKind
	ID       string
	Token    string
	Fraction float64
	Record   video.Record
	Err      error
}
