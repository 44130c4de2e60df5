package status

type Status = int32

// Per-identifier download lifecycle. Paused is a sub-state of Active.
const (
	Idle Status = iota
	Requested
	Active
	Paused
	Completed
	Cancelled
	Failed
)

var names = map[Status]string{
	Idle:      "idle",
	Requested: "requested",
	Active:    "active",
	Paused:    "paused",
	Completed: "completed",
	Cancelled: "cancelled",
	Failed:    "failed",
}

// String returns the lowercase name of s.
func String(s Status) string {
	if n, ok := names[s]; ok {
		return n
	}

	return "unknown"
}

// IsTerminal reports whether s ends a session.
func IsTerminal(s Status) bool {
	return s == Completed || s == Cancelled || s == Failed
}

// IsInFlight reports whether s holds the identifier's advisory lock.
func IsInFlight(s Status) bool {
	return s == Requested || s == Active || s == Paused
}
