package database

import (
	"time"

	"freebiewatch/app/freebie"
)

// OfferRepository defines the archive operations the run pipeline and the
// ops API use. Archive failures never abort a run; callers log and continue.
type OfferRepository interface {
	RecordSeen(item freebie.Tagged, seenAt time.Time) error
	MarkNotified(key string, notifiedAt time.Time) error

	GetRecent(limit int) ([]Offer, error)
	GetOfferCount() (int, error)
	GetSourceCounts() (map[string]int, error)
}
