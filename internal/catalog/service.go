package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/NamanBalaji/vidvault/internal/logger"
	"github.com/NamanBalaji/vidvault/internal/probe"
	"github.com/NamanBalaji/vidvault/internal/repository"
	"github.com/NamanBalaji/vidvault/internal/video"
	httpPkg "github.com/NamanBalaji/vidvault/pkg/http"
)

const (
	defaultFetchRetries = 3
	defaultRetryStep    = 2 * time.Second
)

var ErrNoCatalog = errors.New("catalog unavailable and nothing cached")

// RecordSource lists the downloaded videos to annotate listings with.
type RecordSource interface {
	Downloaded() []video.Record
}

// Result is one catalog view.
type Result struct {
	Listings  []video.Listing
	FromCache bool
	LastSync  time.Time
	// FetchErr explains why the cache was served, if it was.
	FetchErr error
}

// Service refreshes the catalog from the network, falling back to the last
// cached fetch when offline or when the fetch fails.
type Service struct {
	fetcher Fetcher
	store   repository.Store
	net     probe.NetworkProbe
	records RecordSource
	now     func() time.Time

	retries   int
	retryStep time.Duration

	group singleflight.Group
}

type ServiceOption func(*Service)

// WithRetry sets how often a failed fetch is retried. Attempt n+1 waits
// n*step longer than the first retry.
func WithRetry(retries int, step time.Duration) ServiceOption {
	return func(s *Service) {
		s.retries = max(retries, 0)
		s.retryStep = step
	}
}

func NewService(fetcher Fetcher, store repository.Store, net probe.NetworkProbe, records RecordSource, opts ...ServiceOption) *Service {
	s := &Service{
		fetcher:   fetcher,
		store:     store,
		net:       net,
		records:   records,
		now:       time.Now,
		retries:   defaultFetchRetries,
		retryStep: defaultRetryStep,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Refresh fetches and reconciles the catalog. Concurrent calls share one
// fetch. An error is returned only when neither the network nor the cache
// has anything to show.
func (s *Service) Refresh(ctx context.Context) (Result, error) {
	v, err, shared := s.group.Do("refresh", func() (any, error) {
		return s.refresh(ctx)
	})
	if shared {
		logger.Debugf("Catalog refresh shared with a concurrent caller")
	}

	res, _ := v.(Result)

	return res, err
}

func (s *Service) refresh(ctx context.Context) (Result, error) {
	connected, err := s.net.IsConnected(ctx)
	if err != nil {
		logger.Warnf("Network probe failed, serving cached catalog: %v", err)
		return s.fallback(fmt.Errorf("network probe: %w", err))
	}

	if !connected {
		return s.fallback(errors.New("offline"))
	}

	entries, err := s.fetch(ctx)
	if err != nil {
		logger.Warnf("Catalog fetch failed, serving cached catalog: %v", err)
		return s.fallback(err)
	}

	if err := repository.SaveCatalog(s.store, entries); err != nil {
		logger.Errorf("Failed to cache catalog: %v", err)
	}

	now := s.now()
	if err := repository.SaveLastSync(s.store, now); err != nil {
		logger.Errorf("Failed to record catalog sync time: %v", err)
	}

	logger.Infof("Catalog refreshed with %d entries", len(entries))

	return Result{
		Listings: Reconcile(entries, s.records.Downloaded()),
		LastSync: now,
	}, nil
}

// fetch retries transient failures, waiting step, 2*step, 3*step.
func (s *Service) fetch(ctx context.Context) ([]video.Entry, error) {
	for attempt := 0; ; attempt++ {
		entries, err := s.fetcher.Fetch(ctx)
		if err == nil {
			return entries, nil
		}

		if attempt == s.retries || !retryable(err) {
			return nil, err
		}

		wait := s.retryStep * time.Duration(attempt+1)
		logger.Warnf("Catalog fetch attempt %d failed, retrying in %s: %v", attempt+1, wait, err)

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func retryable(err error) bool {
	return httpPkg.IsConnectivityError(err) ||
		errors.Is(err, httpPkg.ErrServerProblem) ||
		errors.Is(err, httpPkg.ErrTooManyRequests) ||
		errors.Is(err, httpPkg.ErrUnexpectedEOF) ||
		errors.Is(err, httpPkg.ErrIOProblem)
}

func (s *Service) fallback(cause error) (Result, error) {
	res := s.Cached()
	res.FetchErr = cause

	if len(res.Listings) == 0 {
		return res, fmt.Errorf("%w: %w", ErrNoCatalog, cause)
	}

	return res, nil
}

// Cached returns the last successfully fetched catalog without touching the
// network.
func (s *Service) Cached() Result {
	entries := repository.LoadCatalog(s.store)

	return Result{
		Listings:  Reconcile(entries, s.records.Downloaded()),
		FromCache: true,
		LastSync:  repository.LoadLastSync(s.store),
	}
}

// LastSync is the time of the last successful fetch, or the zero time.
func (s *Service) LastSync() time.Time {
	return repository.LoadLastSync(s.store)
}
