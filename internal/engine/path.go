package engine

import (
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/NamanBalaji/vidvault/internal/video"
)

const defaultExt = "mp4"

var (
	unsafeIDChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)
	validExt      = regexp.MustCompile(`^[a-z0-9]{1,5}$`)
)

// FileName returns the deterministic file name for e: video_<id>.<ext>.
func FileName(e video.Entry) string {
	id := unsafeIDChars.ReplaceAllString(e.ID, "_")
	id = strings.Trim(id, ".")

	if id == "" {
		id = "_"
	}

	return "video_" + id + "." + extension(e.SourceURL)
}

// extension takes the file extension from the source URI path, falling back
// to mp4.
func extension(source string) string {
	p := source
	if u, err := url.Parse(source); err == nil {
		p = u.Path
	}

	ext := strings.ToLower(strings.TrimPrefix(path.Ext(p), "."))
	if !validExt.MatchString(ext) {
		return defaultExt
	}

	return ext
}

// PathFor returns where e is stored under dir.
func PathFor(dir string, e video.Entry) string {
	return filepath.Join(dir, FileName(e))
}
