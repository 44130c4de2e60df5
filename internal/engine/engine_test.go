package engine_test

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NamanBalaji/vidvault/internal/engine"
	"github.com/NamanBalaji/vidvault/internal/errors"
	"github.com/NamanBalaji/vidvault/internal/filesystem"
	"github.com/NamanBalaji/vidvault/internal/video"
)

type recorder struct {
	mu     sync.Mutex
	events []engine.Event
}

func (r *recorder) notify(e engine.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, e)
}

func (r *recorder) terminal(id string) []engine.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []engine.Event

	for _, e := range r.events {
		if e.ID == id && e.Kind.Terminal() {
			out = append(out, e)
		}
	}

	return out
}

func (r *recorder) waitTerminal(t *testing.T, id string) engine.Event {
	t.Helper()

	require.Eventually(t, func() bool { return len(r.terminal(id)) > 0 }, 2*time.Second, 5*time.Millisecond)

	return r.terminal(id)[0]
}

func setup(t *testing.T) (*engine.Engine, *fakeOpener, *recorder, string) {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "videos")
	opener := newFakeOpener()
	rec := &recorder{}
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	e := engine.New(dir, opener.open, rec.notify, engine.WithClock(func() time.Time { return at }))

	return e, opener, rec, dir
}

func entry(id string) video.Entry {
	return video.Entry{ID: id, Title: "Video " + id, Author: "Blender", SourceURL: "https://cdn.example/" + id + ".mp4"}
}

func TestStartRejectsMissingSource(t *testing.T) {
	e, _, _, _ := setup(t)

	_, err := e.Start(context.Background(), video.Entry{ID: "x"})
	assert.ErrorIs(t, err, errors.ErrInvalidSource)
	assert.Empty(t, e.Active())
}

func TestStartRejectsDuplicate(t *testing.T) {
	e, _, _, _ := setup(t)

	s, err := e.Start(context.Background(), entry("a"))
	require.NoError(t, err)
	assert.NotEmpty(t, s.Token)

	_, err = e.Start(context.Background(), entry("a"))
	assert.ErrorIs(t, err, errors.ErrAlreadyActive)
	assert.Equal(t, []string{"a"}, e.Active())
}

func TestStartFailureDropsSession(t *testing.T) {
	e, opener, _, _ := setup(t)
	opener.startErr = stderrors.New("no route")

	_, err := e.Start(context.Background(), entry("a"))
	assert.ErrorIs(t, err, errors.ErrTransferFailed)
	assert.Empty(t, e.Active())
}

func TestCompletionBuildsRecord(t *testing.T) {
	e, opener, rec, dir := setup(t)

	s, err := e.Start(context.Background(), entry("a"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "video_a.mp4"), s.Path)

	ft := opener.get(s.Path)
	require.NotNil(t, ft)
	assert.Equal(t, "https://cdn.example/a.mp4", ft.source)

	ft.report(0, 2048)
	ft.report(1024, 2048)
	assert.InDelta(t, 0.5, s.Fraction(), 1e-9)

	ft.complete(make([]byte, 2048))

	ev := rec.waitTerminal(t, "a")
	assert.Equal(t, engine.Completed, ev.Kind)
	assert.Equal(t, 1.0, ev.Fraction)
	assert.Equal(t, "a", ev.Record.ID)
	assert.Equal(t, "Video a", ev.Record.Title)
	assert.Equal(t, "2.0 KB", ev.Record.FileSize)
	assert.Equal(t, int64(2048), ev.Record.SizeBytes)
	assert.Equal(t, filesystem.ToURI(s.Path), ev.Record.URI)
	assert.Equal(t, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), ev.Record.DownloadDate)

	assert.Empty(t, e.Active())
	assert.Len(t, rec.terminal("a"), 1)
}

func TestFailureEvent(t *testing.T) {
	e, opener, rec, _ := setup(t)

	s, err := e.Start(context.Background(), entry("a"))
	require.NoError(t, err)

	opener.get(s.Path).fail(stderrors.New("connection reset"))

	ev := rec.waitTerminal(t, "a")
	assert.Equal(t, engine.Failed, ev.Kind)
	assert.ErrorIs(t, ev.Err, errors.ErrTransferFailed)
	assert.True(t, errors.Retryable(ev.Err))
	assert.Empty(t, e.Active())
}

func TestCancelRemovesPartialFile(t *testing.T) {
	e, opener, rec, _ := setup(t)

	s, err := e.Start(context.Background(), entry("b"))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(s.Path, []byte("partial"), 0o644))
	opener.get(s.Path).report(7, 100)

	require.NoError(t, e.Cancel("b"))

	assert.NoFileExists(t, s.Path)
	assert.Empty(t, e.Active())
	assert.True(t, opener.get(s.Path).canceled)

	ev := rec.waitTerminal(t, "b")
	assert.Equal(t, engine.Cancelled, ev.Kind)

	// the transfer's own cancelled result must not produce a second terminal event
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, rec.terminal("b"), 1)
}

func TestCancelWithoutPartialFile(t *testing.T) {
	e, _, rec, _ := setup(t)

	_, err := e.Start(context.Background(), entry("b"))
	require.NoError(t, err)

	require.NoError(t, e.Cancel("b"))
	assert.Equal(t, engine.Cancelled, rec.waitTerminal(t, "b").Kind)
}

func TestCancelUnknown(t *testing.T) {
	e, _, _, _ := setup(t)

	assert.ErrorIs(t, e.Cancel("nope"), errors.ErrNotFound)
}

func TestCancelAfterCompletionIsNotFound(t *testing.T) {
	e, opener, rec, _ := setup(t)

	s, err := e.Start(context.Background(), entry("a"))
	require.NoError(t, err)

	opener.get(s.Path).complete([]byte("done"))
	rec.waitTerminal(t, "a")

	assert.ErrorIs(t, e.Cancel("a"), errors.ErrNotFound)
	assert.FileExists(t, s.Path)
	assert.Len(t, rec.terminal("a"), 1)
}

func TestCompletionAfterCancelIsDropped(t *testing.T) {
	e, opener, rec, _ := setup(t)

	s, err := e.Start(context.Background(), entry("a"))
	require.NoError(t, err)

	ft := opener.get(s.Path)
	require.NoError(t, e.Cancel("a"))

	// a late write must not survive either
	require.NoError(t, os.WriteFile(s.Path, []byte("late"), 0o644))
	ft.complete([]byte("late"))

	time.Sleep(20 * time.Millisecond)

	events := rec.terminal("a")
	require.Len(t, events, 1)
	assert.Equal(t, engine.Cancelled, events[0].Kind)
}

func TestPauseResume(t *testing.T) {
	e, opener, _, _ := setup(t)

	assert.NoError(t, e.Pause("missing"))
	assert.NoError(t, e.Resume(context.Background(), "missing"))

	s, err := e.Start(context.Background(), entry("a"))
	require.NoError(t, err)

	require.NoError(t, e.Pause("a"))
	assert.True(t, s.Paused())
	assert.True(t, opener.get(s.Path).paused)

	require.NoError(t, e.Resume(context.Background(), "a"))
	assert.False(t, s.Paused())
	assert.Equal(t, 1, opener.get(s.Path).resumes)
}

func TestRestartAfterTerminal(t *testing.T) {
	e, opener, rec, _ := setup(t)

	s1, err := e.Start(context.Background(), entry("a"))
	require.NoError(t, err)

	opener.get(s1.Path).fail(stderrors.New("boom"))
	rec.waitTerminal(t, "a")

	s2, err := e.Start(context.Background(), entry("a"))
	require.NoError(t, err)
	assert.NotEqual(t, s1.Token, s2.Token)
	assert.Equal(t, s1.Path, s2.Path)
}

func TestPathFor(t *testing.T) {
	tests := []struct {
		name  string
		entry video.Entry
		want  string
	}{
		{"mp4 source", video.Entry{ID: "a", SourceURL: "http://x/a.mp4"}, "video_a.mp4"},
		{"query string ignored", video.Entry{ID: "a", SourceURL: "http://x/a.webm?sig=1"}, "video_a.webm"},
		{"no extension", video.Entry{ID: "a", SourceURL: "http://x/stream"}, "video_a.mp4"},
		{"odd extension", video.Entry{ID: "a", SourceURL: "http://x/a.m3u8-live"}, "video_a.mp4"},
		{"unsafe id", video.Entry{ID: "../big buck/bunny", SourceURL: "http://x/a.MKV"}, "video__big_buck_bunny.mkv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, filepath.Join("/d", tt.want), engine.PathFor("/d", tt.entry))
		})
	}
}
