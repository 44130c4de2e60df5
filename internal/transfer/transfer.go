// Package transfer provides the resumable single-file transfer primitive the
// download engine drives.
package transfer

import (
	"context"
	"errors"
)

var (
	ErrAlreadyStarted = errors.New("transfer already started")
	ErrCancelled      = errors.New("transfer cancelled")
)

// ProgressFunc receives byte counts while a transfer runs. expected is zero or
// negative when the total size is unknown. Calls may repeat values.
type ProgressFunc func(written, expected int64)

// Result is the terminal outcome of a transfer. Err is nil on success.
type Result struct {
	Path string
	Size int64
	Err  error
}

// Transfer moves one remote resource to one local path.
//
// Exactly one Result is delivered on Done over the life of a transfer. Pause
// stops data flow without delivering a result and keeps the partial file so
// Resume can continue from it. Cancel delivers ErrCancelled unless a result
// was already delivered.
type Transfer interface {
	Start(ctx context.Context) error
	Pause() error
	Resume(ctx context.Context) error
	Cancel() error
	Done() <-chan Result
}

// Opener creates a transfer from source to dest without starting it.
type Opener func(source, dest string, onProgress ProgressFunc) Transfer
