// Package sidechannel delivers supplementary data cards to call
// participants, out of band from the spoken reply. Delivery is best
// effort: a failed publish is logged by the caller and never interrupts
// the conversation.
package sidechannel

import (
	"context"
	"encoding/json"
	"time"
)

// CardType tags every data card payload.
const CardType = "financial_data_card"

// Card is the structured payload pushed alongside a spoken answer when
// the user asks a data-seeking question.
type Card struct {
	Type      string    `json:"type"`
	Question  string    `json:"question"`
	Content   string    `json:"content"`
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewCard builds a card for the given question and detail content.
func NewCard(question, content, sessionID string) *Card {
	return &Card{
		Type:      CardType,
		Question:  question,
		Content:   content,
		SessionID: sessionID,
		Timestamp: time.Now(),
	}
}

// ToJSON serializes the card for the wire.
func (c *Card) ToJSON() ([]byte, error) {
	return json.Marshal(c)
}

// CardFromJSON deserializes a card payload.
func CardFromJSON(data []byte) (*Card, error) {
	var card Card
	if err := json.Unmarshal(data, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// Publisher pushes data cards to the session's side channel.
// Implementations must be safe for concurrent use.
type Publisher interface {
	// PublishCard delivers one card. Errors indicate a failed best-effort
	// publish; callers log and continue.
	PublishCard(ctx context.Context, card *Card) error

	// Close releases the underlying transport.
	Close() error
}
