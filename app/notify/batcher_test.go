package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

type recordedCall struct {
	Content string  `json:"content"`
	Embeds  []Embed `json:"embeds"`
}

func recordingWebhook(t *testing.T, calls *[]recordedCall, failOnCall int) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var call recordedCall
		if err := json.NewDecoder(r.Body).Decode(&call); err != nil {
			t.Errorf("Failed to decode webhook payload: %v", err)
		}
		*calls = append(*calls, call)

		if failOnCall > 0 && len(*calls) == failOnCall {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
}

func newTestBatcher(endpoint string) *Batcher {
	client := NewClient(endpoint, "test-agent", 5*time.Second)
	client.limiter = rate.NewLimiter(rate.Inf, 1)
	return NewBatcher(client)
}

func makeEmbeds(n int) []Embed {
	embeds := make([]Embed, n)
	for i := range embeds {
		embeds[i] = Embed{Title: fmt.Sprintf("Game %d", i)}
	}
	return embeds
}

func TestBatcher_SplitsAtTransportLimit(t *testing.T) {
	var calls []recordedCall
	server := recordingWebhook(t, &calls, 0)
	defer server.Close()

	batcher := newTestBatcher(server.URL)

	delivered, err := batcher.Deliver(context.Background(), makeEmbeds(23), "role-1")
	if err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}
	if delivered != 23 {
		t.Errorf("Expected 23 delivered, got %d", delivered)
	}

	if len(calls) != 3 {
		t.Fatalf("Expected 3 webhook calls, got %d", len(calls))
	}
	for i, want := range []int{10, 10, 3} {
		if len(calls[i].Embeds) != want {
			t.Errorf("Call %d: expected %d embeds, got %d", i, want, len(calls[i].Embeds))
		}
	}
}

func TestBatcher_MentionOnlyOnFirstBatch(t *testing.T) {
	var calls []recordedCall
	server := recordingWebhook(t, &calls, 0)
	defer server.Close()

	batcher := newTestBatcher(server.URL)

	if _, err := batcher.Deliver(context.Background(), makeEmbeds(23), "424242"); err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}

	if calls[0].Content != "<@&424242>" {
		t.Errorf("First call should carry the mention, got '%s'", calls[0].Content)
	}
	for i := 1; i < len(calls); i++ {
		if calls[i].Content != "" {
			t.Errorf("Call %d should not carry a mention, got '%s'", i, calls[i].Content)
		}
	}
}

func TestBatcher_NoMentionConfigured(t *testing.T) {
	var calls []recordedCall
	server := recordingWebhook(t, &calls, 0)
	defer server.Close()

	batcher := newTestBatcher(server.URL)

	if _, err := batcher.Deliver(context.Background(), makeEmbeds(3), ""); err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}

	if calls[0].Content != "" {
		t.Errorf("Expected no mention content, got '%s'", calls[0].Content)
	}
}

func TestBatcher_NothingToSend(t *testing.T) {
	var calls []recordedCall
	server := recordingWebhook(t, &calls, 0)
	defer server.Close()

	batcher := newTestBatcher(server.URL)

	delivered, err := batcher.Deliver(context.Background(), nil, "role-1")
	if err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}
	if delivered != 0 {
		t.Errorf("Expected 0 delivered, got %d", delivered)
	}
	if len(calls) != 0 {
		t.Errorf("Expected no webhook calls, got %d", len(calls))
	}
}

func TestBatcher_PartialDeliveryOnFailure(t *testing.T) {
	var calls []recordedCall
	server := recordingWebhook(t, &calls, 2) // second batch fails
	defer server.Close()

	batcher := newTestBatcher(server.URL)

	delivered, err := batcher.Deliver(context.Background(), makeEmbeds(23), "")
	if err == nil {
		t.Fatal("Expected error from failed batch")
	}

	// Only the first batch completed
	if delivered != 10 {
		t.Errorf("Expected 10 delivered before the failure, got %d", delivered)
	}
	if len(calls) != 2 {
		t.Errorf("Expected delivery to stop after the failed call, got %d calls", len(calls))
	}
}

func TestClient_RejectsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-agent", 5*time.Second)
	client.limiter = rate.NewLimiter(rate.Inf, 1)

	if err := client.Send(context.Background(), "", makeEmbeds(1)); err == nil {
		t.Error("Expected error for non-2xx response")
	}
}
