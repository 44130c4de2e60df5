package catalog_test

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NamanBalaji/vidvault/internal/catalog"
	"github.com/NamanBalaji/vidvault/internal/probe"
	"github.com/NamanBalaji/vidvault/internal/repository"
	"github.com/NamanBalaji/vidvault/internal/video"
	httpPkg "github.com/NamanBalaji/vidvault/pkg/http"
)

const flatDoc = `[
  {"id":"1","title":"Big Buck Bunny","author":"By Blender Foundation","duration":"8:18","views":"24,969,123 views",
   "thumbnailUrl":"https://i.example/bbb.jpg","videoUrl":"https://v.example/BigBuckBunny.mp4",
   "description":"Big Buck Bunny tells the story","isLive":true,"subscriber":"25254545 Subscribers","uploadTime":"May 9, 2011"},
  {"id":"2","title":"The first Blender Open Movie from 2006","author":"By Blender Foundation","videoUrl":"https://v.example/ElephantsDream.mp4"}
]`

const categoriesDoc = `{"categories":[{"name":"Movies","videos":[
  {"title":"Sintel","subtitle":"By Blender Foundation","thumb":"images/Sintel.jpg","sources":["https://v.example/Sintel.mp4"],"description":"Sintel"},
  {"title":"Tears  of Steel","subtitle":"By Blender Foundation","sources":[]}
]}]}`

func TestParseFlat(t *testing.T) {
	entries, err := catalog.Parse([]byte(flatDoc))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	e := entries[0]
	assert.Equal(t, "1", e.ID)
	assert.Equal(t, "Big Buck Bunny", e.Title)
	assert.Equal(t, "By Blender Foundation", e.Author)
	assert.Equal(t, "https://v.example/BigBuckBunny.mp4", e.SourceURL)
	assert.Equal(t, "https://i.example/bbb.jpg", e.ThumbnailURL)
	assert.True(t, e.IsLive)
	assert.Equal(t, "May 9, 2011", e.UploadTime)
}

func TestParseCategories(t *testing.T) {
	entries, err := catalog.Parse([]byte(categoriesDoc))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "sintel", entries[0].ID)
	assert.Equal(t, "By Blender Foundation", entries[0].Author)
	assert.Equal(t, "images/Sintel.jpg", entries[0].ThumbnailURL)
	assert.Equal(t, "https://v.example/Sintel.mp4", entries[0].SourceURL)

	assert.Equal(t, "tears-of-steel", entries[1].ID)
	assert.False(t, entries[1].HasSource())
}

func TestParseRejectsOtherShapes(t *testing.T) {
	for _, doc := range []string{`{"videos":[]}`, `"text"`, `{"categories":[]}`, `[{"title":1}]`} {
		_, err := catalog.Parse([]byte(doc))
		assert.ErrorIs(t, err, catalog.ErrUnexpectedShape, doc)
	}
}

func TestReconcilePreservesOrderAndRemoteFields(t *testing.T) {
	remote := []video.Entry{
		{ID: "v2", Title: "Two (remastered)"},
		{ID: "v1", Title: "One"},
	}
	records := []video.Record{
		{ID: "v2", Title: "Two", URI: "file:///d/video_v2.mp4"},
		{ID: "v9", Title: "Gone from catalog", URI: "file:///d/video_v9.mp4"},
	}

	got := catalog.Reconcile(remote, records)
	require.Len(t, got, 2)

	assert.Equal(t, "v2", got[0].ID)
	assert.True(t, got[0].Downloaded)
	assert.Equal(t, "Two (remastered)", got[0].Title, "remote descriptive fields win")
	assert.Equal(t, "file:///d/video_v2.mp4", got[0].LocalURI)

	assert.Equal(t, "v1", got[1].ID)
	assert.False(t, got[1].Downloaded)
	assert.Empty(t, got[1].LocalURI)
}

func TestReconcileKeepsDownloadsThatLeftTheCatalog(t *testing.T) {
	records := []video.Record{{ID: "v1", URI: "file:///d/video_v1.mp4"}}

	got := catalog.Reconcile([]video.Entry{{ID: "v2"}}, records)
	require.Len(t, got, 1)
	assert.False(t, got[0].Downloaded)

	// reconciliation never touches the downloaded list itself
	require.Len(t, records, 1)
	assert.Equal(t, "v1", records[0].ID)
}

func TestReconcileEmpty(t *testing.T) {
	assert.Empty(t, catalog.Reconcile(nil, nil))
}

func TestHTTPFetcher(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, flatDoc)
	}))
	defer server.Close()

	entries, err := catalog.NewHTTPFetcher(httpPkg.NewClient(), server.URL).Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestHTTPFetcherStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := catalog.NewHTTPFetcher(httpPkg.NewClient(), server.URL).Fetch(context.Background())
	assert.ErrorIs(t, err, httpPkg.ErrServerProblem)
}

type staticRecords []video.Record

func (s staticRecords) Downloaded() []video.Record {
	return s
}

type countingFetcher struct {
	calls   atomic.Int32
	entries []video.Entry
	err     error
	// failures, when set, limits err to the first calls.
	failures int32
	gate     chan struct{}
}

func (f *countingFetcher) Fetch(ctx context.Context) ([]video.Entry, error) {
	n := f.calls.Add(1)

	if f.gate != nil {
		<-f.gate
	}

	if f.failures > 0 && n > f.failures {
		return f.entries, nil
	}

	return f.entries, f.err
}

func fastRetry() catalog.ServiceOption {
	return catalog.WithRetry(3, time.Millisecond)
}

func newStore(t *testing.T) *repository.BboltStore {
	t.Helper()

	store, err := repository.NewBboltStore(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestRefreshCachesAndRecordsSync(t *testing.T) {
	store := newStore(t)
	fetcher := &countingFetcher{entries: []video.Entry{{ID: "a", Title: "A"}, {ID: "b", Title: "B"}}}
	records := staticRecords{{ID: "b", URI: "file:///d/video_b.mp4"}}

	svc := catalog.NewService(fetcher, store, probe.Static{Connected: true}, records)

	res, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.False(t, res.FromCache)
	assert.NoError(t, res.FetchErr)
	require.Len(t, res.Listings, 2)
	assert.True(t, res.Listings[1].Downloaded)

	assert.Equal(t, fetcher.entries, repository.LoadCatalog(store))
	assert.False(t, svc.LastSync().IsZero())
	assert.WithinDuration(t, time.Now(), svc.LastSync(), time.Minute)
}

func TestRefreshFallsBackToCache(t *testing.T) {
	tests := []struct {
		name    string
		net     probe.NetworkProbe
		fetcher *countingFetcher
	}{
		{"offline", probe.Static{Connected: false}, &countingFetcher{}},
		{"probe error", probe.Static{Err: stderrors.New("no radio")}, &countingFetcher{}},
		{"fetch error", probe.Static{Connected: true}, &countingFetcher{err: httpPkg.ErrServerProblem}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStore(t)
			cached := []video.Entry{{ID: "old", Title: "Cached"}}
			require.NoError(t, repository.SaveCatalog(store, cached))

			svc := catalog.NewService(tt.fetcher, store, tt.net, staticRecords{{ID: "other"}}, fastRetry())

			res, err := svc.Refresh(context.Background())
			require.NoError(t, err)
			assert.True(t, res.FromCache)
			assert.Error(t, res.FetchErr)
			require.Len(t, res.Listings, 1)
			assert.Equal(t, "old", res.Listings[0].ID)
		})
	}
}

func TestRefreshWithNothingCached(t *testing.T) {
	svc := catalog.NewService(&countingFetcher{}, newStore(t), probe.Static{Connected: false}, staticRecords{})

	res, err := svc.Refresh(context.Background())
	assert.ErrorIs(t, err, catalog.ErrNoCatalog)
	assert.Empty(t, res.Listings)
}

func TestConcurrentRefreshSharesFetch(t *testing.T) {
	fetcher := &countingFetcher{entries: []video.Entry{{ID: "a"}}, gate: make(chan struct{})}
	svc := catalog.NewService(fetcher, newStore(t), probe.Static{Connected: true}, staticRecords{})

	var wg sync.WaitGroup

	for range 5 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			res, err := svc.Refresh(context.Background())
			assert.NoError(t, err)
			assert.Len(t, res.Listings, 1)
		}()
	}

	require.Eventually(t, func() bool { return fetcher.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(fetcher.gate)
	wg.Wait()

	assert.Equal(t, int32(1), fetcher.calls.Load())
}

func TestRefreshRetriesTransientFailures(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		failures  int32
		wantCalls int32
		fromCache bool
	}{
		{"recovers on third attempt", httpPkg.ErrServerProblem, 2, 3, false},
		{"gives up after three retries", httpPkg.ErrNetworkProblem, 0, 4, true},
		{"rate limited then ok", httpPkg.ErrTooManyRequests, 1, 2, false},
		{"not found is not retried", httpPkg.ErrResourceNotFound, 0, 1, true},
		{"bad shape is not retried", catalog.ErrUnexpectedShape, 0, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStore(t)
			require.NoError(t, repository.SaveCatalog(store, []video.Entry{{ID: "old"}}))

			fetcher := &countingFetcher{entries: []video.Entry{{ID: "new"}}, err: tt.err, failures: tt.failures}
			svc := catalog.NewService(fetcher, store, probe.Static{Connected: true}, staticRecords{}, fastRetry())

			res, err := svc.Refresh(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantCalls, fetcher.calls.Load())
			assert.Equal(t, tt.fromCache, res.FromCache)

			if !tt.fromCache {
				require.Len(t, res.Listings, 1)
				assert.Equal(t, "new", res.Listings[0].ID)
			}
		})
	}
}

func TestRefreshRetryStopsWithContext(t *testing.T) {
	store := newStore(t)
	require.NoError(t, repository.SaveCatalog(store, []video.Entry{{ID: "old"}}))

	fetcher := &countingFetcher{err: httpPkg.ErrServerProblem}
	svc := catalog.NewService(fetcher, store, probe.Static{Connected: true}, staticRecords{}, catalog.WithRetry(3, time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	res, err := svc.Refresh(ctx)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.True(t, res.FromCache)
	assert.ErrorIs(t, res.FetchErr, context.DeadlineExceeded)
	assert.Equal(t, int32(1), fetcher.calls.Load())
}
