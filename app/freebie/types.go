package freebie

import (
	"time"
)

// Source identifies which storefront adapter produced an item.
type Source string

const (
	SourceEpic  Source = "epic"
	SourceSteam Source = "steam"
)

// Item is the common shape both storefront adapters normalize into.
// URL is the only mandatory field; adapters drop anything without a
// resolvable store page.
type Item struct {
	Source    Source
	Title     string
	URL       string
	ImageURL  string
	PriceText string
	EndsAt    *time.Time // set only when the storefront publishes an expiry
}

// Tagged is an Item annotated with its derived deduplication key.
type Tagged struct {
	Item
	Key string
}

// KeySet is the read-only view of previously notified keys the change
// filter consults.
type KeySet interface {
	Has(key string) bool
}
