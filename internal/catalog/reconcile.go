// Package catalog fetches the remote video catalog, caches it, and merges it
// with the local download records.
package catalog

import "github.com/NamanBalaji/vidvault/internal/video"

// Reconcile annotates remote entries with local download state. The result
// keeps the order of remote; descriptive fields come from the remote entry
// and only the local URI is taken from the record. Records with no remote
// entry are left out here and stay in the downloaded list.
func Reconcile(remote []video.Entry, records []video.Record) []video.Listing {
	local := make(map[string]string, len(records))
	for _, r := range records {
		local[r.ID] = r.URI
	}

	out := make([]video.Listing, 0, len(remote))

	for _, e := range remote {
		l := video.Listing{Entry: e}

		if uri, ok := local[e.ID]; ok {
			l.Downloaded = true
			l.LocalURI = uri
		}

		out = append(out, l)
	}

	return out
}
