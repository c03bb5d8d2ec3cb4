package database

import (
	"time"
)

// Offer is an archive row: every freebie the watcher has ever observed,
// keyed by its deduplication key. The archive powers the ops API; the JSON
// state file remains the authority for "already notified".
type Offer struct {
	Key         string
	Source      string
	Title       string
	URL         string
	PriceText   string
	EndsAt      *time.Time
	FirstSeenAt time.Time
	LastSeenAt  time.Time
	NotifiedAt  *time.Time
}
