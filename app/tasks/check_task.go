package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"freebiewatch/app/database"
	"freebiewatch/app/freebie"
	"freebiewatch/app/notify"
	"freebiewatch/app/sources"
	"freebiewatch/app/state"
)

// CheckTask is one full check cycle: fetch both storefronts concurrently,
// merge, filter against the notified state, format, deliver, persist.
type CheckTask struct {
	Task
	fetchers      []sources.Fetcher
	formatter     *notify.Formatter
	batcher       *notify.Batcher
	store         *state.Store
	offerRepo     database.OfferRepository
	mentionRoleID string
}

func NewCheckTask(fetchers []sources.Fetcher, formatter *notify.Formatter,
	batcher *notify.Batcher, store *state.Store, offerRepo database.OfferRepository,
	mentionRoleID string) *CheckTask {
	return &CheckTask{
		Task:          NewTask(TaskTypeCheck),
		fetchers:      fetchers,
		formatter:     formatter,
		batcher:       batcher,
		store:         store,
		offerRepo:     offerRepo,
		mentionRoleID: mentionRoleID,
	}
}

func (t *CheckTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	notified, err := t.store.Load()
	if err != nil {
		slog.Warn("State file unreadable, starting from empty state", "error", err)
	}

	items := t.fetchAll(ctx)
	t.archiveSeen(items)

	unseen := freebie.Filter(items, notified)
	if len(unseen) == 0 {
		slog.Info("Task completed",
			"type", "CheckFreebies",
			"id", t.GetID(),
			"duration", t.GetDuration(),
			"found", len(items),
			"new", 0)
		return nil
	}

	embeds := t.formatter.Run(unseen)
	delivered, deliverErr := t.batcher.Deliver(ctx, embeds, t.mentionRoleID)

	// Embeds map 1:1 onto unseen items in order, so the delivered count is
	// exactly the prefix of items that reached the channel. Only those are
	// marked notified; the rest stay unseen and go out next cycle.
	if delivered > 0 {
		now := time.Now().UTC()
		for _, item := range unseen[:delivered] {
			notified.MarkNotified(item.Key, now)
			if err := t.offerRepo.MarkNotified(item.Key, now); err != nil {
				slog.Warn("Failed to mark offer notified in archive", "key", item.Key, "error", err)
			}
		}

		if err := t.store.Save(notified); err != nil {
			slog.Warn("Failed to persist notified state", "error", err)
		}
	}

	if deliverErr != nil {
		return fmt.Errorf("delivery failed after %d of %d notifications: %w", delivered, len(embeds), deliverErr)
	}

	slog.Info("Task completed",
		"type", "CheckFreebies",
		"id", t.GetID(),
		"duration", t.GetDuration(),
		"found", len(items),
		"new", len(unseen),
		"delivered", delivered)

	return nil
}

// fetchAll runs every adapter concurrently and merges their items in
// adapter order. A failed source logs and contributes nothing; the run
// proceeds with whatever the others returned.
func (t *CheckTask) fetchAll(ctx context.Context) []freebie.Item {
	results := make([]sources.Result, len(t.fetchers))

	g, gctx := errgroup.WithContext(ctx)
	for i, fetcher := range t.fetchers {
		g.Go(func() error {
			results[i] = fetcher.Fetch(gctx)
			return nil
		})
	}
	g.Wait()

	var items []freebie.Item
	for i, fetcher := range t.fetchers {
		result := results[i]
		if result.Err != nil {
			slog.Warn("Source fetch failed", "source", fetcher.Name(), "error", result.Err)
			continue
		}
		slog.Debug("Source fetched", "source", fetcher.Name(), "items", len(result.Items))
		items = append(items, result.Items...)
	}

	return items
}

// archiveSeen upserts every observed offer, notified or not. Archive
// failures are logged and swallowed; the archive is bookkeeping, not the
// dedup authority.
func (t *CheckTask) archiveSeen(items []freebie.Item) {
	now := time.Now().UTC()
	for _, item := range items {
		tagged := freebie.Tagged{Item: item, Key: freebie.DeriveKey(item)}
		if err := t.offerRepo.RecordSeen(tagged, now); err != nil {
			slog.Warn("Failed to archive offer", "key", tagged.Key, "error", err)
		}
	}
}
