// Package probe answers the two platform questions the download gates ask:
// how much storage is free and whether the network is reachable.
package probe

import (
	"context"
	"errors"
)

var ErrUnsupported = errors.New("storage probe not supported on this platform")

// ResourceProbe reports storage capacity for the download directory.
type ResourceProbe interface {
	FreeSpaceBytes(ctx context.Context) (int64, error)
	TotalSpaceBytes(ctx context.Context) (int64, error)
}

// NetworkProbe reports connectivity.
type NetworkProbe interface {
	IsConnected(ctx context.Context) (bool, error)
}

// Static is a fixed probe answer, useful for offline front ends and tests.
type Static struct {
	Free      int64
	Total     int64
	Connected bool
	Err       error
}

func (s Static) FreeSpaceBytes(context.Context) (int64, error) {
	return s.Free, s.Err
}

func (s Static) TotalSpaceBytes(context.Context) (int64, error) {
	return s.Total, s.Err
}

func (s Static) IsConnected(context.Context) (bool, error) {
	return s.Connected, s.Err
}
