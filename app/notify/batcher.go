package notify

import (
	"context"
	"fmt"
)

// MaxEmbedsPerCall is the webhook transport limit on embeds per request.
const MaxEmbedsPerCall = 10

type Batcher struct {
	client *Client
}

func NewBatcher(client *Client) *Batcher {
	return &Batcher{client: client}
}

// Deliver sends the embeds in ordered batches of at most MaxEmbedsPerCall.
// Batches go out sequentially to preserve relative ordering. A configured
// mention rides only on the first batch so a cycle pings once, not once per
// batch. There is no internal retry: the first failed batch aborts delivery,
// and the returned count reflects only the embeds that went out before it.
func (b *Batcher) Deliver(ctx context.Context, embeds []Embed, mentionRoleID string) (int, error) {
	if len(embeds) == 0 {
		return 0, nil
	}

	delivered := 0

	for start := 0; start < len(embeds); start += MaxEmbedsPerCall {
		end := min(start+MaxEmbedsPerCall, len(embeds))
		batch := embeds[start:end]

		var content string
		if mentionRoleID != "" && start == 0 {
			content = fmt.Sprintf("<@&%s>", mentionRoleID)
		}

		if err := b.client.Send(ctx, content, batch); err != nil {
			return delivered, fmt.Errorf("batch starting at %d failed: %w", start, err)
		}

		delivered += len(batch)
	}

	return delivered, nil
}
