// Package agent drives a language model through a bounded
// call/response/tool loop over the user's financial analytics.
package agent

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/ShaileshKumar97/Financial-Coach-Agent/internal/analysis"
)

// maxIterations bounds the model round trips within one Chat call.
// Hitting the cap returns the best partial answer instead of an error.
const maxIterations = 10

// fallbackSpoken is used when no model turn produced any text.
const fallbackSpoken = "I've analyzed your data. How can I help?"

// Reply is the outcome of one dialogue turn. Spoken is the short answer
// for the voice channel; Detail carries the most recent tool output for
// the data card, or repeats Spoken when no tool ran.
type Reply struct {
	Spoken string
	Detail string
}

// session is the persisted dialogue state for one session key. Only the
// holder of mu may touch it; Chat serializes per key.
type session struct {
	mu      sync.Mutex
	system  string
	history []*genai.Content
}

// sessionStore keys sessions without sharing mutable state across keys.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*session)}
}

func (s *sessionStore) get(key string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[key]
	if !ok {
		sess = &session{}
		s.sessions[key] = sess
	}
	return sess
}

// Coach owns the analyzer, the tool registry and the per-session dialogue
// state, and runs the tool loop against the model.
type Coach struct {
	analyzer     *analysis.Analyzer
	registry     *Registry
	model        ChatModel
	sessions     *sessionStore
	userID       string
	voiceContext string
	log          zerolog.Logger
}

// NewCoach wires a coach over one analyzer. The voice-context snapshot is
// computed once here and reused for every session's system instruction.
func NewCoach(analyzer *analysis.Analyzer, model ChatModel, userID string, log zerolog.Logger) *Coach {
	return &Coach{
		analyzer:     analyzer,
		registry:     NewRegistry(analyzer),
		model:        model,
		sessions:     newSessionStore(),
		userID:       userID,
		voiceContext: buildVoiceContext(analyzer),
		log:          log,
	}
}

// VoiceContext returns the finances snapshot used in system instructions.
func (c *Coach) VoiceContext() string {
	return c.voiceContext
}

// SystemPrompt returns the full system instruction for a new session.
func (c *Coach) SystemPrompt() string {
	return systemPrompt(c.voiceContext)
}

// Chat runs one dialogue turn for the session key. An empty key falls
// back to the coach's user ID. The model is re-invoked after every batch
// of tool results until it answers in plain text or the iteration cap is
// hit; a tool failure is surfaced to the model as a result turn, never as
// an error from Chat.
func (c *Coach) Chat(ctx context.Context, sessionKey, userMessage string) (Reply, error) {
	if sessionKey == "" {
		sessionKey = c.userID
	}

	sess := c.sessions.get(sessionKey)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.system == "" {
		sess.system = c.SystemPrompt()
	}
	sess.history = append(sess.history, genai.NewContentFromText(userMessage, genai.RoleUser))

	iterations := 0
	truncated := true
	for iterations < maxIterations {
		iterations++

		content, err := c.model.Generate(ctx, sess.system, sess.history, c.registry.Declarations())
		if err != nil {
			return Reply{}, err
		}
		sess.history = append(sess.history, content)

		calls := functionCalls(content)
		if len(calls) == 0 {
			truncated = false
			break
		}

		parts := make([]*genai.Part, 0, len(calls))
		for _, call := range calls {
			result, err := c.registry.Execute(call.Name)
			response := map[string]any{"result": result}
			if err != nil {
				c.log.Warn().Err(err).Str("tool", call.Name).Msg("Tool execution failed")
				response = map[string]any{"error": err.Error()}
			}
			parts = append(parts, &genai.Part{
				FunctionResponse: &genai.FunctionResponse{
					ID:       call.ID,
					Name:     call.Name,
					Response: response,
				},
			})
		}
		sess.history = append(sess.history, &genai.Content{Role: genai.RoleUser, Parts: parts})
	}

	if truncated {
		c.log.Warn().
			Str("session_key", sessionKey).
			Int("iterations", iterations).
			Msg("Iteration cap reached, returning partial answer")
	}

	reply := extractReply(sess.history)
	c.log.Debug().
		Str("session_key", sessionKey).
		Int("iterations", iterations).
		Int("history_len", len(sess.history)).
		Msg("Chat turn complete")
	return reply, nil
}

// functionCalls collects the tool-call requests in a model message.
func functionCalls(content *genai.Content) []*genai.FunctionCall {
	var calls []*genai.FunctionCall
	for _, part := range content.Parts {
		if part != nil && part.FunctionCall != nil {
			calls = append(calls, part.FunctionCall)
		}
	}
	return calls
}

// extractReply scans the history backward: Spoken is the most recent
// model turn with non-empty text (fixed fallback otherwise); Detail is
// the most recent tool result, defaulting to Spoken when no tool ran.
func extractReply(history []*genai.Content) Reply {
	spoken := ""
	detail := ""

	for i := len(history) - 1; i >= 0; i-- {
		content := history[i]
		if spoken == "" && content.Role == genai.RoleModel {
			if text := textOf(content); text != "" {
				spoken = text
			}
		}
		if detail == "" {
			if result := toolResultOf(content); result != "" {
				detail = result
			}
		}
		if spoken != "" && detail != "" {
			break
		}
	}

	if spoken == "" {
		spoken = fallbackSpoken
	}
	if detail == "" {
		detail = spoken
	}
	return Reply{Spoken: spoken, Detail: detail}
}

func textOf(content *genai.Content) string {
	for _, part := range content.Parts {
		if part != nil && part.Text != "" {
			return part.Text
		}
	}
	return ""
}

func toolResultOf(content *genai.Content) string {
	for i := len(content.Parts) - 1; i >= 0; i-- {
		part := content.Parts[i]
		if part == nil || part.FunctionResponse == nil {
			continue
		}
		if s, ok := part.FunctionResponse.Response["result"].(string); ok && s != "" {
			return s
		}
		if s, ok := part.FunctionResponse.Response["error"].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
