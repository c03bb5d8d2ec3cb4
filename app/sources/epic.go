package sources

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"freebiewatch/app/freebie"
)

// imageTypePriority orders the key-image tags the store publishes, best
// banner first.
var imageTypePriority = []string{"OfferImageWide", "DieselStoreFrontWide", "featuredMedia"}

type EpicFetcher struct {
	config    EpicConfig
	client    *http.Client
	userAgent string
	locale    string
	country   string
}

func NewEpicFetcher(config EpicConfig, client *http.Client, userAgent, locale, country string) *EpicFetcher {
	return &EpicFetcher{
		config:    config,
		client:    client,
		userAgent: userAgent,
		locale:    locale,
		country:   country,
	}
}

func (f *EpicFetcher) Name() string {
	return string(freebie.SourceEpic)
}

func (f *EpicFetcher) Fetch(ctx context.Context) Result {
	endpoint, err := f.buildURL()
	if err != nil {
		return Result{Err: err}
	}

	data, err := fetchURL(ctx, f.client, endpoint, f.userAgent)
	if err != nil {
		return Result{Err: fmt.Errorf("failed to fetch promotions: %w", err)}
	}

	items, err := parseEpicPromotions(data, f.config.StoreBaseURL, time.Now().UTC())
	if err != nil {
		return Result{Err: err}
	}

	return Result{Items: items}
}

func (f *EpicFetcher) buildURL() (string, error) {
	u, err := url.Parse(f.config.Endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid promotions endpoint: %w", err)
	}

	q := u.Query()
	q.Set("locale", f.locale)
	q.Set("country", f.country)
	q.Set("allowCountries", f.country)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

type epicResponse struct {
	Data struct {
		Catalog struct {
			SearchStore struct {
				Elements []epicElement `json:"elements"`
			} `json:"searchStore"`
		} `json:"Catalog"`
	} `json:"data"`
}

type epicElement struct {
	Title       string         `json:"title"`
	ProductSlug string         `json:"productSlug"`
	URLSlug     string         `json:"urlSlug"`
	KeyImages   []epicKeyImage `json:"keyImages"`
	CatalogNs   struct {
		Mappings []epicMapping `json:"mappings"`
	} `json:"catalogNs"`
	Price struct {
		TotalPrice struct {
			DiscountPrice int `json:"discountPrice"`
			FmtPrice      struct {
				DiscountPrice string `json:"discountPrice"`
			} `json:"fmtPrice"`
		} `json:"totalPrice"`
	} `json:"price"`
	Promotions *struct {
		PromotionalOffers []struct {
			PromotionalOffers []epicPromo `json:"promotionalOffers"`
		} `json:"promotionalOffers"`
	} `json:"promotions"`
}

type epicKeyImage struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type epicMapping struct {
	PageSlug string `json:"pageSlug"`
	PageType string `json:"pageType"`
}

type epicPromo struct {
	StartDate       time.Time `json:"startDate"`
	EndDate         time.Time `json:"endDate"`
	DiscountSetting struct {
		DiscountPercentage int `json:"discountPercentage"`
	} `json:"discountSetting"`
}

func parseEpicPromotions(data []byte, storeBaseURL string, now time.Time) ([]freebie.Item, error) {
	var response epicResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("failed to parse promotions response: %w", err)
	}

	// Dedupe within the batch by resolved URL; the promotions feed repeats
	// an offer under multiple namespaces. Last seen wins, first-seen order
	// is kept.
	var order []string
	byURL := make(map[string]freebie.Item)

	for _, element := range response.Data.Catalog.SearchStore.Elements {
		promo, ok := activeFreePromo(element, now)
		if !ok {
			continue
		}

		pageURL := resolvePageURL(element, storeBaseURL)
		if pageURL == "" {
			continue
		}

		endsAt := promo.EndDate
		item := freebie.Item{
			Source:    freebie.SourceEpic,
			Title:     element.Title,
			URL:       pageURL,
			ImageURL:  pickImage(element.KeyImages),
			PriceText: priceText(element),
			EndsAt:    &endsAt,
		}

		if _, seen := byURL[pageURL]; !seen {
			order = append(order, pageURL)
		}
		byURL[pageURL] = item
	}

	items := make([]freebie.Item, 0, len(order))
	for _, u := range order {
		items = append(items, byURL[u])
	}

	return items, nil
}

// activeFreePromo returns the promotional window covering now with a
// discount percentage of exactly 0, meaning 100% off in the feed's terms.
func activeFreePromo(element epicElement, now time.Time) (epicPromo, bool) {
	if element.Promotions == nil {
		return epicPromo{}, false
	}

	for _, group := range element.Promotions.PromotionalOffers {
		for _, promo := range group.PromotionalOffers {
			if promo.DiscountSetting.DiscountPercentage != 0 {
				continue
			}
			if promo.StartDate.After(now) || !promo.EndDate.After(now) {
				continue
			}
			return promo, true
		}
	}

	return epicPromo{}, false
}

// resolvePageURL builds the store page URL from the product slug, falling
// back to the catalog mappings when the offer carries no slug of its own.
func resolvePageURL(element epicElement, storeBaseURL string) string {
	slug := cmp.Or(element.ProductSlug, element.URLSlug)
	slug = strings.TrimSuffix(slug, "/home")

	if slug == "" || slug == "[]" {
		for _, mapping := range element.CatalogNs.Mappings {
			if mapping.PageType == "productHome" && mapping.PageSlug != "" {
				slug = mapping.PageSlug
				break
			}
		}
	}

	if slug == "" || slug == "[]" {
		return ""
	}

	return strings.TrimSuffix(storeBaseURL, "/") + "/p/" + slug
}

func pickImage(images []epicKeyImage) string {
	for _, wanted := range imageTypePriority {
		for _, image := range images {
			if image.Type == wanted && image.URL != "" {
				return image.URL
			}
		}
	}

	for _, image := range images {
		if image.Type != "Thumbnail" && image.URL != "" {
			return image.URL
		}
	}

	for _, image := range images {
		if image.URL != "" {
			return image.URL
		}
	}

	return ""
}

func priceText(element epicElement) string {
	fmtPrice := element.Price.TotalPrice.FmtPrice.DiscountPrice
	if element.Price.TotalPrice.DiscountPrice == 0 || fmtPrice == "" || fmtPrice == "0" {
		return "Free"
	}
	return fmtPrice
}
