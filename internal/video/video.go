// Package video defines the catalog and offline-library data model: remote
// catalog entries, locally owned download records and the merged listing the
// front end renders.
package video

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Entry is a remote catalog descriptor. It is replaced wholesale on every
// catalog refresh.
type Entry struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Author       string `json:"author"`
	Duration     string `json:"duration"`
	Views        string `json:"views"`
	ThumbnailURL string `json:"thumbnailUrl"`
	SourceURL    string `json:"videoUrl"`
	IsLive       bool   `json:"isLive"`
	Subscriber   string `json:"subscriber,omitempty"`
	UploadTime   string `json:"uploadTime,omitempty"`
}

// HasSource reports whether the entry carries a playable source URI.
func (e Entry) HasSource() bool {
	return strings.TrimSpace(e.SourceURL) != ""
}

// Record describes a completed download. It carries its own copy of the
// descriptive fields so it can be shown without any catalog.
type Record struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	Duration     string    `json:"duration"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	URI          string    `json:"uri"`
	Description  string    `json:"description"`
	Views        string    `json:"views"`
	FileSize     string    `json:"fileSize,omitempty"`
	SizeBytes    int64     `json:"sizeBytes,omitempty"`
	DownloadDate time.Time `json:"downloadDate"`
}

// NewRecord builds the record for entry e stored at uri.
func NewRecord(e Entry, uri string, size int64, at time.Time) Record {
	return Record{
		ID:           e.ID,
		Title:        e.Title,
		Author:       e.Author,
		Duration:     e.Duration,
		ThumbnailURL: e.ThumbnailURL,
		URI:          uri,
		Description:  e.Description,
		Views:        e.Views,
		FileSize:     FormatSize(size),
		SizeBytes:    size,
		DownloadDate: at,
	}
}

// Listing is a catalog entry annotated with local download state.
type Listing struct {
	Entry

	Downloaded bool   `json:"downloaded"`
	LocalURI   string `json:"localPath,omitempty"`
}

var whitespace = regexp.MustCompile(`\s+`)

// DeriveID returns the stable identifier for a catalog item: the server id
// when present, otherwise the title slug, otherwise a name-based UUID of the
// source URI.
func DeriveID(serverID, title, source string) string {
	if id := strings.TrimSpace(serverID); id != "" {
		return id
	}

	if t := strings.TrimSpace(title); t != "" {
		return strings.ToLower(whitespace.ReplaceAllString(t, "-"))
	}

	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(source)).String()
}

// FormatSize renders a byte count the way the offline list shows it.
func FormatSize(bytes int64) string {
	const unit = 1024

	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit && exp < 3; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGT"[exp])
}
