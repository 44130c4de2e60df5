package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/NamanBalaji/vidvault/internal/logger"
	"github.com/NamanBalaji/vidvault/internal/video"
)

// LoadRecords reads the downloaded-video records. A missing or corrupt value
// yields an empty list.
func LoadRecords(s Store) []video.Record {
	var records []video.Record

	if !decode(s, KeyDownloadedVideos, &records) {
		return []video.Record{}
	}

	return records
}

// SaveRecords replaces the downloaded-video records.
func SaveRecords(s Store, records []video.Record) error {
	return encode(s, KeyDownloadedVideos, records)
}

// LoadCatalog reads the last successfully fetched catalog.
func LoadCatalog(s Store) []video.Entry {
	var entries []video.Entry

	if !decode(s, KeyVideos, &entries) {
		return []video.Entry{}
	}

	return entries
}

// SaveCatalog replaces the cached catalog.
func SaveCatalog(s Store, entries []video.Entry) error {
	return encode(s, KeyVideos, entries)
}

// LoadLastSync returns the time of the last successful remote fetch, or the
// zero time.
func LoadLastSync(s Store) time.Time {
	raw := s.Get(KeyLastSync)
	if raw == "" {
		return time.Time{}
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		logger.Warnf("Ignoring malformed %s value %q: %v", KeyLastSync, raw, err)
		return time.Time{}
	}

	return t
}

// SaveLastSync records a successful remote fetch.
func SaveLastSync(s Store, t time.Time) error {
	return s.Set(KeyLastSync, t.UTC().Format(time.RFC3339))
}

func decode(s Store, key string, v any) bool {
	raw := s.Get(key)
	if raw == "" {
		return false
	}

	if err := json.Unmarshal([]byte(raw), v); err != nil {
		logger.Errorf("Failed to decode %s: %v", key, err)
		return false
	}

	return true
}

func encode(s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	return s.Set(key, string(data))
}
