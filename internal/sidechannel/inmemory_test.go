package sidechannel

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestChannelPublisher_PublishAndDrain(t *testing.T) {
	pub := NewChannelPublisher(10)
	defer pub.Close()

	ctx := context.Background()
	for _, q := range []string{"first", "second", "third"} {
		if err := pub.PublishCard(ctx, NewCard(q, "content", "call_1")); err != nil {
			t.Fatalf("PublishCard(%q) failed: %v", q, err)
		}
	}

	cards := pub.Drain()
	if len(cards) != 3 {
		t.Fatalf("got %d cards, want 3", len(cards))
	}
	// Publish order is preserved.
	if cards[0].Question != "first" || cards[2].Question != "third" {
		t.Errorf("cards out of order: %q, %q, %q", cards[0].Question, cards[1].Question, cards[2].Question)
	}
	if cards[0].Type != CardType {
		t.Errorf("Type = %q, want %q", cards[0].Type, CardType)
	}
}

func TestChannelPublisher_StartDelivers(t *testing.T) {
	pub := NewChannelPublisher(10)
	defer pub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *Card, 1)
	if err := pub.Start(ctx, func(c *Card) { got <- c }); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if err := pub.PublishCard(ctx, NewCard("q", "detail", "call_2")); err != nil {
		t.Fatalf("PublishCard failed: %v", err)
	}

	select {
	case card := <-got:
		if card.SessionID != "call_2" {
			t.Errorf("SessionID = %q, want call_2", card.SessionID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("card was not delivered")
	}
}

func TestChannelPublisher_ClosedRejectsPublish(t *testing.T) {
	pub := NewChannelPublisher(1)
	pub.Close()

	err := pub.PublishCard(context.Background(), NewCard("q", "c", "s"))
	if err == nil || !strings.Contains(err.Error(), "closed") {
		t.Errorf("expected closed error, got %v", err)
	}
}

func TestCardJSONRoundTrip(t *testing.T) {
	card := NewCard("what should I budget?", "Budget Recommendations: ...", "call_3")
	data, err := card.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}
	if !strings.Contains(string(data), `"type":"financial_data_card"`) {
		t.Errorf("payload missing type tag: %s", data)
	}

	decoded, err := CardFromJSON(data)
	if err != nil {
		t.Fatalf("CardFromJSON failed: %v", err)
	}
	if decoded.Question != card.Question || decoded.SessionID != card.SessionID {
		t.Errorf("round trip mismatch: %+v", decoded)
	}
}
