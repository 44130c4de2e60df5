package errors

import (
	"errors"
	"fmt"
)

var (
	Is     = errors.Is
	As     = errors.As
	New    = errors.New
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Gate failures returned synchronously by a download request.
var (
	ErrAlreadyDownloading  = New("video is already downloading")
	ErrAlreadyDownloaded   = New("video is already downloaded")
	ErrInsufficientStorage = New("insufficient storage space")
	ErrOffline             = New("no network connection")
	ErrSourceUnavailable   = New("video has no playable source")
)

// Engine and record errors.
var (
	ErrInvalidSource     = New("invalid source URI")
	ErrAlreadyActive     = New("download session already active")
	ErrNotFound          = New("not found")
	ErrFileMissing       = New("downloaded file is missing")
	ErrTransferFailed    = New("transfer failed")
	ErrPersistenceFailed = New("failed to persist download metadata")
)

// OpError ties a sentinel to the operation and identifier that produced it.
type OpError struct {
	Op  string
	ID  string
	Err error
}

func (e *OpError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}

	return fmt.Sprintf("%s %s: %v", e.Op, e.ID, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// Wrap returns an *OpError for op on id, or nil if err is nil.
func Wrap(op, id string, err error) error {
	if err == nil {
		return nil
	}

	return &OpError{Op: op, ID: id, Err: err}
}

// Retryable reports whether the user can simply issue the same request again
// once conditions change.
func Retryable(err error) bool {
	if err == nil {
		return false
	}

	return Is(err, ErrTransferFailed) || Is(err, ErrOffline) || Is(err, ErrInsufficientStorage)
}
