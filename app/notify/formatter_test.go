package notify

import (
	"fmt"
	"testing"
	"time"

	"freebiewatch/app/freebie"
)

var testColors = map[freebie.Source]int{
	freebie.SourceEpic:  0x2A2A2A,
	freebie.SourceSteam: 0x1B2838,
}

func TestFormatter_OneEmbedPerItem(t *testing.T) {
	formatter := NewFormatter(testColors)

	items := []freebie.Tagged{
		{Item: freebie.Item{Source: freebie.SourceEpic, Title: "A", URL: "https://a", PriceText: "Free"}, Key: "epic:https://a"},
		{Item: freebie.Item{Source: freebie.SourceSteam, Title: "B", URL: "https://b", PriceText: "Free"}, Key: "steam:https://b"},
	}

	embeds := formatter.Run(items)
	if len(embeds) != 2 {
		t.Fatalf("Expected 2 embeds, got %d", len(embeds))
	}
	for i, embed := range embeds {
		if embed.Title != items[i].Title {
			t.Errorf("Embed %d: expected title '%s', got '%s'", i, items[i].Title, embed.Title)
		}
		if embed.URL != items[i].URL {
			t.Errorf("Embed %d: expected URL '%s', got '%s'", i, items[i].URL, embed.URL)
		}
	}
}

func TestFormatter_ColorAndFooterPerSource(t *testing.T) {
	formatter := NewFormatter(testColors)

	items := []freebie.Tagged{
		{Item: freebie.Item{Source: freebie.SourceEpic, Title: "A", URL: "https://a", PriceText: "Free"}},
		{Item: freebie.Item{Source: freebie.SourceSteam, Title: "B", URL: "https://b", PriceText: "Free"}},
	}

	embeds := formatter.Run(items)

	if embeds[0].Color != testColors[freebie.SourceEpic] {
		t.Errorf("Expected epic color %#x, got %#x", testColors[freebie.SourceEpic], embeds[0].Color)
	}
	if embeds[1].Color != testColors[freebie.SourceSteam] {
		t.Errorf("Expected steam color %#x, got %#x", testColors[freebie.SourceSteam], embeds[1].Color)
	}

	if embeds[0].Footer == nil || embeds[0].Footer.Text != "Epic Games Store" {
		t.Errorf("Expected epic footer, got %+v", embeds[0].Footer)
	}
	if embeds[1].Footer == nil || embeds[1].Footer.Text != "Steam" {
		t.Errorf("Expected steam footer, got %+v", embeds[1].Footer)
	}
}

func TestFormatter_PriceField(t *testing.T) {
	formatter := NewFormatter(testColors)

	items := []freebie.Tagged{
		{Item: freebie.Item{Source: freebie.SourceSteam, Title: "A", URL: "https://a", PriceText: "Free"}},
	}

	embeds := formatter.Run(items)
	if len(embeds[0].Fields) != 1 {
		t.Fatalf("Expected only the price field, got %d fields", len(embeds[0].Fields))
	}
	if embeds[0].Fields[0].Name != "Price" || embeds[0].Fields[0].Value != "Free" {
		t.Errorf("Unexpected price field: %+v", embeds[0].Fields[0])
	}
}

func TestFormatter_ExpiryFieldOnlyWithEndsAt(t *testing.T) {
	formatter := NewFormatter(testColors)

	endsAt := time.Date(2026, 9, 4, 15, 0, 0, 0, time.UTC)
	items := []freebie.Tagged{
		{Item: freebie.Item{Source: freebie.SourceEpic, Title: "Expiring", URL: "https://a", PriceText: "Free", EndsAt: &endsAt}},
		{Item: freebie.Item{Source: freebie.SourceSteam, Title: "Open-ended", URL: "https://b", PriceText: "Free"}},
	}

	embeds := formatter.Run(items)

	var endsField *EmbedField
	for i := range embeds[0].Fields {
		if embeds[0].Fields[i].Name == "Ends" {
			endsField = &embeds[0].Fields[i]
		}
	}
	if endsField == nil {
		t.Fatal("Expected an 'Ends' field for an item with expiry")
	}

	// Both an absolute and a relative rendering of the same instant
	want := fmt.Sprintf("<t:%d:f> (<t:%d:R>)", endsAt.Unix(), endsAt.Unix())
	if endsField.Value != want {
		t.Errorf("Expected '%s', got '%s'", want, endsField.Value)
	}

	for _, field := range embeds[1].Fields {
		if field.Name == "Ends" {
			t.Error("Item without expiry must not have an 'Ends' field")
		}
	}
}

func TestFormatter_ImagePlacementPerSource(t *testing.T) {
	formatter := NewFormatter(testColors)

	items := []freebie.Tagged{
		{Item: freebie.Item{Source: freebie.SourceEpic, Title: "A", URL: "https://a", ImageURL: "https://img/wide.jpg", PriceText: "Free"}},
		{Item: freebie.Item{Source: freebie.SourceSteam, Title: "B", URL: "https://b", ImageURL: "https://img/capsule.jpg", PriceText: "Free"}},
	}

	embeds := formatter.Run(items)

	if embeds[0].Image == nil || embeds[0].Image.URL != "https://img/wide.jpg" {
		t.Errorf("Feed banner should be the large image, got %+v", embeds[0].Image)
	}
	if embeds[0].Thumbnail != nil {
		t.Error("Feed item should not set a thumbnail")
	}

	if embeds[1].Thumbnail == nil || embeds[1].Thumbnail.URL != "https://img/capsule.jpg" {
		t.Errorf("Listing capsule should be the thumbnail, got %+v", embeds[1].Thumbnail)
	}
	if embeds[1].Image != nil {
		t.Error("Listing item should not set the large image")
	}
}

func TestFormatter_NoImage(t *testing.T) {
	formatter := NewFormatter(testColors)

	items := []freebie.Tagged{
		{Item: freebie.Item{Source: freebie.SourceEpic, Title: "A", URL: "https://a", PriceText: "Free"}},
	}

	embeds := formatter.Run(items)
	if embeds[0].Image != nil || embeds[0].Thumbnail != nil {
		t.Error("Item without an image should set neither image nor thumbnail")
	}
}
