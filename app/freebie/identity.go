package freebie

import (
	"fmt"
	"regexp"
)

var appIDPattern = regexp.MustCompile(`/app/(\d+)/`)

// DeriveKey computes the stable deduplication key for an item.
//
// For the promotions feed source, a numeric product ID embedded in the URL
// path is the only identity that survives cosmetic URL changes (locale
// prefixes, slug edits), so it is preferred when present. Everything else,
// including all listing-source items, falls back to the source-qualified URL.
func DeriveKey(item Item) string {
	if item.Source == SourceEpic {
		if m := appIDPattern.FindStringSubmatch(item.URL); m != nil {
			return fmt.Sprintf("%s_app_%s", item.Source, m[1])
		}
	}

	return fmt.Sprintf("%s:%s", item.Source, item.URL)
}
