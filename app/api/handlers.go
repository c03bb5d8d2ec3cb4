package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"freebiewatch/app/database"
	"freebiewatch/app/state"
	"freebiewatch/app/tasks"
)

type Handler struct {
	store     *state.Store
	offerRepo database.OfferRepository
	status    *tasks.Status
	version   string
	startedAt time.Time
}

func NewHandler(store *state.Store, offerRepo database.OfferRepository,
	status *tasks.Status, version string) *Handler {
	return &Handler{
		store:     store,
		offerRepo: offerRepo,
		status:    status,
		version:   version,
		startedAt: time.Now().UTC(),
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	runs, lastRunAt, _ := h.status.Snapshot()

	health := gin.H{
		"status":    "ok",
		"version":   h.version,
		"uptime":    time.Since(h.startedAt).Round(time.Second).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"runs":      runs,
	}
	if !lastRunAt.IsZero() {
		health["last_run_at"] = lastRunAt.Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	runs, lastRunAt, lastError := h.status.Snapshot()

	stats := gin.H{
		"runs":       runs,
		"last_error": lastError,
	}
	if !lastRunAt.IsZero() {
		stats["last_run_at"] = lastRunAt.Format(time.RFC3339)
	}

	if notified, err := h.store.Load(); err == nil {
		stats["notified_keys"] = notified.Len()
	} else {
		slog.Error("Failed to load state for stats", "error", err)
	}

	if total, err := h.offerRepo.GetOfferCount(); err == nil {
		stats["offers_total"] = total
	} else {
		slog.Error("Database error", "operation", "offer_count", "error", err)
	}

	if counts, err := h.offerRepo.GetSourceCounts(); err == nil {
		stats["offers_by_source"] = counts
	} else {
		slog.Error("Database error", "operation", "source_counts", "error", err)
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) GetOffers(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 200 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 200"})
			return
		}
		limit = parsed
	}

	offers, err := h.offerRepo.GetRecent(limit)
	if err != nil {
		slog.Error("Database error", "operation", "recent_offers", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	results := make([]gin.H, 0, len(offers))
	for _, offer := range offers {
		entry := gin.H{
			"key":           offer.Key,
			"source":        offer.Source,
			"title":         offer.Title,
			"url":           offer.URL,
			"price_text":    offer.PriceText,
			"first_seen_at": offer.FirstSeenAt.Format(time.RFC3339),
			"last_seen_at":  offer.LastSeenAt.Format(time.RFC3339),
		}
		if offer.EndsAt != nil {
			entry["ends_at"] = offer.EndsAt.Format(time.RFC3339)
		}
		if offer.NotifiedAt != nil {
			entry["notified_at"] = offer.NotifiedAt.Format(time.RFC3339)
		}
		results = append(results, entry)
	}

	c.JSON(http.StatusOK, gin.H{"offers": results})
}
