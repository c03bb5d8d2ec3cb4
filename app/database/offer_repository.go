package database

import (
	"fmt"
	"time"

	"freebiewatch/app/freebie"
)

var _ OfferRepository = (*offerRepository)(nil)

type offerRepository struct {
	db *DB
}

func NewOfferRepository(db *DB) OfferRepository {
	return &offerRepository{db: db}
}

// RecordSeen upserts an observed offer. A repeat observation refreshes the
// display fields and the last-seen timestamp; first_seen_at and notified_at
// are left alone.
func (r *offerRepository) RecordSeen(item freebie.Tagged, seenAt time.Time) error {
	_, err := r.db.Exec(`
		INSERT INTO offers (
			key, source, title, url, price_text, ends_at,
			first_seen_at, last_seen_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			title = excluded.title,
			url = excluded.url,
			price_text = excluded.price_text,
			ends_at = excluded.ends_at,
			last_seen_at = excluded.last_seen_at
	`, item.Key, string(item.Source), item.Title, item.URL, item.PriceText,
		item.EndsAt, seenAt, seenAt)

	if err != nil {
		return fmt.Errorf("failed to record offer: %w", err)
	}

	return nil
}

// MarkNotified stamps the first successful notification for a key. Later
// calls keep the original timestamp.
func (r *offerRepository) MarkNotified(key string, notifiedAt time.Time) error {
	_, err := r.db.Exec(`
		UPDATE offers
		SET notified_at = ?
		WHERE key = ? AND notified_at IS NULL
	`, notifiedAt, key)

	if err != nil {
		return fmt.Errorf("failed to mark offer notified: %w", err)
	}

	return nil
}

func (r *offerRepository) GetRecent(limit int) ([]Offer, error) {
	rows, err := r.db.Query(`
		SELECT key, source, title, url, price_text, ends_at,
		       first_seen_at, last_seen_at, notified_at
		FROM offers
		ORDER BY last_seen_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent offers: %w", err)
	}
	defer rows.Close()

	var offers []Offer
	for rows.Next() {
		var offer Offer
		err := rows.Scan(
			&offer.Key, &offer.Source, &offer.Title, &offer.URL,
			&offer.PriceText, &offer.EndsAt,
			&offer.FirstSeenAt, &offer.LastSeenAt, &offer.NotifiedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan offer row: %w", err)
		}
		offers = append(offers, offer)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating offer rows: %w", err)
	}

	return offers, nil
}

func (r *offerRepository) GetOfferCount() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM offers`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count offers: %w", err)
	}
	return count, nil
}

func (r *offerRepository) GetSourceCounts() (map[string]int, error) {
	rows, err := r.db.Query(`SELECT source, COUNT(*) FROM offers GROUP BY source`)
	if err != nil {
		return nil, fmt.Errorf("failed to count offers by source: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var source string
		var count int
		if err := rows.Scan(&source, &count); err != nil {
			return nil, fmt.Errorf("failed to scan source count: %w", err)
		}
		counts[source] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating source counts: %w", err)
	}

	return counts, nil
}
