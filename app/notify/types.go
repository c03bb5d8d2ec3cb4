package notify

// Discord webhook payload types. Only the fields this service fills are
// modeled.

type Embed struct {
	Title     string       `json:"title,omitempty"`
	URL       string       `json:"url,omitempty"`
	Color     int          `json:"color,omitempty"`
	Footer    *EmbedFooter `json:"footer,omitempty"`
	Image     *EmbedImage  `json:"image,omitempty"`
	Thumbnail *EmbedImage  `json:"thumbnail,omitempty"`
	Fields    []EmbedField `json:"fields,omitempty"`
}

type EmbedFooter struct {
	Text string `json:"text"`
}

type EmbedImage struct {
	URL string `json:"url"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type webhookPayload struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds"`
}
