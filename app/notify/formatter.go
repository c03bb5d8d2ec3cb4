package notify

import (
	"fmt"

	"freebiewatch/app/freebie"
)

var sourceLabels = map[freebie.Source]string{
	freebie.SourceEpic:  "Epic Games Store",
	freebie.SourceSteam: "Steam",
}

type Formatter struct {
	colors map[freebie.Source]int
}

func NewFormatter(colors map[freebie.Source]int) *Formatter {
	return &Formatter{colors: colors}
}

// Run builds one embed per item, in input order. The run pipeline relies on
// that 1:1 mapping to translate a delivered-embed count back into a prefix
// of notified items.
func (f *Formatter) Run(items []freebie.Tagged) []Embed {
	embeds := make([]Embed, 0, len(items))

	for _, item := range items {
		embed := Embed{
			Title:  item.Title,
			URL:    item.URL,
			Color:  f.colors[item.Source],
			Footer: &EmbedFooter{Text: footerText(item.Source)},
			Fields: []EmbedField{
				{Name: "Price", Value: item.PriceText, Inline: true},
			},
		}

		if item.EndsAt != nil {
			unix := item.EndsAt.Unix()
			embed.Fields = append(embed.Fields, EmbedField{
				Name:   "Ends",
				Value:  fmt.Sprintf("<t:%d:f> (<t:%d:R>)", unix, unix),
				Inline: true,
			})
		}

		if item.ImageURL != "" {
			// Feed banners are wide; listing capsules are tiny. Place
			// each where its aspect ratio looks right.
			if item.Source == freebie.SourceEpic {
				embed.Image = &EmbedImage{URL: item.ImageURL}
			} else {
				embed.Thumbnail = &EmbedImage{URL: item.ImageURL}
			}
		}

		embeds = append(embeds, embed)
	}

	return embeds
}

func footerText(source freebie.Source) string {
	if label, ok := sourceLabels[source]; ok {
		return label
	}
	return string(source)
}
