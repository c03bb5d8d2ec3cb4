package sources

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"freebiewatch/app/freebie"
)

type SteamFetcher struct {
	config    SteamConfig
	client    *http.Client
	userAgent string
}

func NewSteamFetcher(config SteamConfig, client *http.Client, userAgent string) *SteamFetcher {
	return &SteamFetcher{
		config:    config,
		client:    client,
		userAgent: userAgent,
	}
}

func (f *SteamFetcher) Name() string {
	return string(freebie.SourceSteam)
}

func (f *SteamFetcher) Fetch(ctx context.Context) Result {
	data, err := fetchURL(ctx, f.client, f.config.SearchURL, f.userAgent)
	if err != nil {
		return Result{Err: fmt.Errorf("failed to fetch search results: %w", err)}
	}

	items, err := parseSteamSearch(data)
	if err != nil {
		return Result{Err: err}
	}

	return Result{Items: items}
}

// parseSteamSearch extracts result rows from the search page. The query
// itself is pre-filtered to free specials, so every row is treated as a
// candidate; the zero-price check below is a display heuristic, not a
// correctness guarantee.
func parseSteamSearch(data []byte) ([]freebie.Item, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse search results: %w", err)
	}

	var items []freebie.Item

	doc.Find("a.search_result_row").Each(func(_ int, row *goquery.Selection) {
		href, ok := row.Attr("href")
		if !ok || href == "" {
			return
		}

		title := strings.TrimSpace(row.Find(".title").Text())
		thumbnail, _ := row.Find(".search_capsule img").Attr("src")

		items = append(items, freebie.Item{
			Source:    freebie.SourceSteam,
			Title:     title,
			URL:       href,
			ImageURL:  thumbnail,
			PriceText: rowPriceText(row),
		})
	})

	return items, nil
}

func rowPriceText(row *goquery.Selection) string {
	priceBlock := row.Find(".search_price_discount_combined")

	// The structured attribute carries the price in cents; zero means free
	// regardless of what the display text says.
	if final, ok := priceBlock.Attr("data-price-final"); ok && final == "0" {
		return "Free"
	}

	text := strings.TrimSpace(row.Find(".discount_final_price").Text())
	if text == "" {
		text = lastLine(priceBlock.Find(".search_price").Text())
	}

	if text == "" || isZeroPrice(text) {
		return "Free"
	}

	return text
}

// lastLine returns the final non-empty line of a price cell. Discounted
// rows render the struck-through original price above the current one.
func lastLine(s string) string {
	lines := strings.Split(s, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}

func isZeroPrice(text string) bool {
	lower := strings.ToLower(text)
	if strings.Contains(lower, "free") {
		return true
	}

	stripped := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, text)

	return stripped != "" && strings.Trim(stripped, "0") == ""
}
