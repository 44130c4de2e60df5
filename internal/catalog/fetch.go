package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/NamanBalaji/vidvault/internal/logger"
	"github.com/NamanBalaji/vidvault/internal/video"
	httpPkg "github.com/NamanBalaji/vidvault/pkg/http"
)

var ErrUnexpectedShape = errors.New("unexpected catalog document")

// Fetcher retrieves the remote catalog.
type Fetcher interface {
	Fetch(ctx context.Context) ([]video.Entry, error)
}

// HTTPFetcher reads the catalog JSON from a fixed URL.
type HTTPFetcher struct {
	client *httpPkg.Client
	url    string
}

func NewHTTPFetcher(client *httpPkg.Client, url string) *HTTPFetcher {
	return &HTTPFetcher{client: client, url: url}
}

func (f *HTTPFetcher) Fetch(ctx context.Context) ([]video.Entry, error) {
	var raw json.RawMessage
	if err := f.client.GetJSON(ctx, f.url, &raw); err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}

	entries, err := Parse(raw)
	if err != nil {
		return nil, err
	}

	logger.Debugf("Fetched %d catalog entries from %s", len(entries), f.url)

	return entries, nil
}

// wireEntry accepts both the flat catalog format and the older
// categories format, which names some fields differently.
type wireEntry struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Author       string   `json:"author"`
	Subtitle     string   `json:"subtitle"`
	Duration     string   `json:"duration"`
	Views        string   `json:"views"`
	ThumbnailURL string   `json:"thumbnailUrl"`
	Thumb        string   `json:"thumb"`
	VideoURL     string   `json:"videoUrl"`
	Sources      []string `json:"sources"`
	IsLive       bool     `json:"isLive"`
	Subscriber   string   `json:"subscriber"`
	UploadTime   string   `json:"uploadTime"`
}

type categoriesDoc struct {
	Categories []struct {
		Videos []wireEntry `json:"videos"`
	} `json:"categories"`
}

// Parse decodes a catalog document: either a JSON array of entries or an
// object whose first category holds the videos.
func Parse(data []byte) ([]video.Entry, error) {
	trimmed := strings.TrimSpace(string(data))

	var wire []wireEntry

	switch {
	case strings.HasPrefix(trimmed, "["):
		if err := json.Unmarshal(data, &wire); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnexpectedShape, err)
		}
	case strings.HasPrefix(trimmed, "{"):
		var doc categoriesDoc
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnexpectedShape, err)
		}

		if len(doc.Categories) == 0 || doc.Categories[0].Videos == nil {
			return nil, fmt.Errorf("%w: no categories[0].videos", ErrUnexpectedShape)
		}

		wire = doc.Categories[0].Videos
	default:
		return nil, ErrUnexpectedShape
	}

	entries := make([]video.Entry, 0, len(wire))
	for _, w := range wire {
		entries = append(entries, w.entry())
	}

	return entries, nil
}

func (w wireEntry) entry() video.Entry {
	source := w.VideoURL
	if source == "" && len(w.Sources) > 0 {
		source = w.Sources[0]
	}

	return video.Entry{
		ID:           video.DeriveID(w.ID, w.Title, source),
		Title:        w.Title,
		Description:  w.Description,
		Author:       firstNonEmpty(w.Author, w.Subtitle),
		Duration:     w.Duration,
		Views:        w.Views,
		ThumbnailURL: firstNonEmpty(w.ThumbnailURL, w.Thumb),
		SourceURL:    source,
		IsLive:       w.IsLive,
		Subscriber:   w.Subscriber,
		UploadTime:   w.UploadTime,
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}

	return ""
}
