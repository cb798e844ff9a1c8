package agent

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/ShaileshKumar97/Financial-Coach-Agent/internal/config"
)

// ChatModel is one round trip to the language model: full history and
// tool declarations in, the model's next message out.
type ChatModel interface {
	Generate(ctx context.Context, systemInstruction string, history []*genai.Content, tools []*genai.Tool) (*genai.Content, error)
}

// GeminiModel backs ChatModel with the Gemini API.
type GeminiModel struct {
	client *genai.Client
	model  string
}

// NewGeminiModel builds the Gemini-backed model. It fails with a
// config.MissingKeyError when the API key is absent.
func NewGeminiModel(ctx context.Context, cfg *config.Config) (*GeminiModel, error) {
	if err := cfg.RequireGeminiKey(); err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiModel{client: client, model: cfg.GeminiModel}, nil
}

// Generate implements ChatModel. Short, low-temperature replies suit the
// spoken-answer contract.
func (m *GeminiModel) Generate(ctx context.Context, systemInstruction string, history []*genai.Content, tools []*genai.Tool) (*genai.Content, error) {
	gcfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.2),
		MaxOutputTokens: 450,
		Tools:           tools,
	}
	if systemInstruction != "" {
		gcfg.SystemInstruction = genai.NewContentFromText(systemInstruction, genai.RoleUser)
	}

	resp, err := m.client.Models.GenerateContent(ctx, m.model, history, gcfg)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("empty response from model")
	}
	return resp.Candidates[0].Content, nil
}
