// Package voice adapts the dialogue coach to a live, turn-based call:
// it extracts the latest spoken utterance, keeps the model round trip off
// the real-time loop, and pushes detail cards over the side channel
// without blocking speech.
package voice

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ShaileshKumar97/Financial-Coach-Agent/internal/agent"
	"github.com/ShaileshKumar97/Financial-Coach-Agent/internal/sidechannel"
)

// GreetingInstruction opens the call. It is an instruction to the speech
// pipeline, not raw data.
const GreetingInstruction = "Say a very brief, warm hello to the user to start the call. " +
	"For example: 'Hi! I'm your financial coach. How can I help you today?' " +
	"Do not read out their financial data yet. Keep it under 2 sentences."

// dataTriggerKeywords mark an utterance as data-seeking; only those turns
// get a side-channel card.
var dataTriggerKeywords = []string{
	"plan",
	"budget",
	"breakdown",
	"payoff",
	"debt",
	"schedule",
	"recommend",
	"summary",
	"details",
	"what should",
}

// Dialogue is the coach surface the coordinator needs.
type Dialogue interface {
	Chat(ctx context.Context, sessionKey, userMessage string) (agent.Reply, error)
}

// Coordinator runs one live call session. It is driven from the call's
// event loop and must never block it on the model round trip.
type Coordinator struct {
	dialogue  Dialogue
	publisher sidechannel.Publisher
	sessionID string
	log       zerolog.Logger

	mu          sync.Mutex
	lastHandled string

	publishWG sync.WaitGroup
}

// NewCoordinator creates a coordinator with a fresh call-scoped session
// ID, which keys both the dialogue state and the side-channel cards.
func NewCoordinator(dialogue Dialogue, publisher sidechannel.Publisher, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		dialogue:  dialogue,
		publisher: publisher,
		sessionID: "call_" + uuid.NewString()[:8],
		log:       log,
	}
}

// SessionID returns the call-scoped session identifier.
func (c *Coordinator) SessionID() string {
	return c.sessionID
}

// OnGenerate handles one model-generation opportunity for the live
// conversation context. When no user utterance is extractable it returns
// handled=false and the caller should delegate to its underlying speech
// pipeline unchanged. Otherwise it runs the dialogue turn on a separate
// goroutine, schedules the data-card publish when warranted, and returns
// the spoken text as the single output chunk.
func (c *Coordinator) OnGenerate(ctx context.Context, turns []LiveTurn) (spoken string, handled bool, err error) {
	userText, turn, ok := latestUserText(turns)
	if !ok {
		return "", false, nil
	}

	// The model round trip is slow; run it off the caller's loop.
	type chatResult struct {
		reply agent.Reply
		err   error
	}
	resultCh := make(chan chatResult, 1)
	go func() {
		reply, err := c.dialogue.Chat(ctx, c.sessionID, userText)
		resultCh <- chatResult{reply: reply, err: err}
	}()

	var res chatResult
	select {
	case res = <-resultCh:
	case <-ctx.Done():
		return "", true, ctx.Err()
	}
	if res.err != nil {
		return "", true, fmt.Errorf("dialogue turn: %w", res.err)
	}

	// The publish is scheduled only after the dialogue call returned, so
	// it never races the orchestrator for this turn.
	c.maybePublishCard(turn, userText, res.reply.Detail)

	return res.reply.Spoken, true, nil
}

// maybePublishCard pushes the detail payload for data-seeking utterances,
// at most once per distinct user turn. Delivery is fire-and-forget;
// failures are logged, never raised.
func (c *Coordinator) maybePublishCard(turn LiveTurn, userText, detail string) {
	id := turn.ID
	if id == "" {
		id = userText
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if id == c.lastHandled || !isDataSeeking(userText) {
		return
	}
	c.lastHandled = id

	card := sidechannel.NewCard(userText, detail, c.sessionID)
	c.publishWG.Add(1)
	go func() {
		defer c.publishWG.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.publisher.PublishCard(ctx, card); err != nil {
			c.log.Warn().Err(err).Str("session_id", c.sessionID).Msg("Data card publish failed")
		}
	}()
}

// Flush waits for in-flight card publishes. Called at session teardown.
func (c *Coordinator) Flush() {
	c.publishWG.Wait()
}

func isDataSeeking(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range dataTriggerKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
