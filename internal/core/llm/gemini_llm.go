package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/agritunisie/connect/internal/core"
)

type GeminiLLM struct {
	client    *genai.Client
	modelName string
}

// NewGeminiLLM builds the advice client. With an empty API key the client is
// left unconfigured and callers fall back to simulated responses.
func NewGeminiLLM(ctx context.Context, apiKey, modelName string) (*GeminiLLM, error) {
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	if apiKey == "" {
		return &GeminiLLM{modelName: modelName}, nil
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &GeminiLLM{client: cl, modelName: modelName}, nil
}

func (g *GeminiLLM) Configured() bool {
	return g.client != nil
}

func (g *GeminiLLM) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func (g *GeminiLLM) Generate(ctx context.Context, prompt string) (string, error) {
	if g.client == nil {
		return "", fmt.Errorf("gemini client not configured")
	}

	m := g.client.GenerativeModel(g.modelName)
	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String(), nil
}

var _ core.AdviceProvider = (*GeminiLLM)(nil)
