package video

import (
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// SortBy selects the ordering applied by Sort.
type SortBy string

const (
	SortTitle    SortBy = "title"
	SortAuthor   SortBy = "author"
	SortDuration SortBy = "duration"
	SortDate     SortBy = "date"
	SortViews    SortBy = "views"
)

const trendingCount = 5

// ParseSortBy validates a user supplied ordering.
func ParseSortBy(s string) (SortBy, bool) {
	switch by := SortBy(strings.ToLower(strings.TrimSpace(s))); by {
	case SortTitle, SortAuthor, SortDuration, SortDate, SortViews:
		return by, true
	default:
		return "", false
	}
}

// ParseViews extracts the digits of a display string like "24,969,123 views".
func ParseViews(views string) int64 {
	var b strings.Builder

	for _, r := range views {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}

	n, err := strconv.ParseInt(b.String(), 10, 64)
	if err != nil {
		return 0
	}

	return n
}

func matches(query, title, author string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}

	return strings.Contains(strings.ToLower(title), q) || strings.Contains(strings.ToLower(author), q)
}

// FilterListings keeps listings whose title or author contains query.
func FilterListings(list []Listing, query string) []Listing {
	out := make([]Listing, 0, len(list))

	for _, l := range list {
		if matches(query, l.Title, l.Author) {
			out = append(out, l)
		}
	}

	return out
}

// FilterRecords keeps records whose title or author contains query.
func FilterRecords(list []Record, query string) []Record {
	out := make([]Record, 0, len(list))

	for _, r := range list {
		if matches(query, r.Title, r.Author) {
			out = append(out, r)
		}
	}

	return out
}

// SortListings returns a sorted copy of list.
func SortListings(list []Listing, by SortBy) []Listing {
	out := append([]Listing(nil), list...)

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]

		switch by {
		case SortAuthor:
			return a.Author < b.Author
		case SortDuration:
			return a.Duration < b.Duration
		case SortViews:
			return ParseViews(a.Views) > ParseViews(b.Views)
		case SortDate:
			return parseUploadTime(a.UploadTime).After(parseUploadTime(b.UploadTime))
		default:
			return a.Title < b.Title
		}
	})

	return out
}

// SortRecords returns a sorted copy of list.
func SortRecords(list []Record, by SortBy) []Record {
	out := append([]Record(nil), list...)

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]

		switch by {
		case SortAuthor:
			return a.Author < b.Author
		case SortDuration:
			return a.Duration < b.Duration
		case SortViews:
			return ParseViews(a.Views) > ParseViews(b.Views)
		case SortDate:
			return a.DownloadDate.After(b.DownloadDate)
		default:
			return a.Title < b.Title
		}
	})

	return out
}

// Trending returns the most viewed listings.
func Trending(list []Listing) []Listing {
	out := SortListings(list, SortViews)
	if len(out) > trendingCount {
		out = out[:trendingCount]
	}

	return out
}

var uploadLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"Jan 2, 2006",
	"January 2, 2006",
}

func parseUploadTime(s string) time.Time {
	for _, layout := range uploadLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t
		}
	}

	return time.Time{}
}
