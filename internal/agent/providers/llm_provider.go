package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const DefaultModel = "gemini-2.5-flash"

var ErrNoContent = errors.New("no text content in response")

// LLMProvider abstracts the text generation backend.
type LLMProvider interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	// GenerateWithSystem answers prompt under a system instruction.
	GenerateWithSystem(ctx context.Context, system, prompt string) (string, error)
	// GenerateStructured decodes a JSON answer into output.
	GenerateStructured(ctx context.Context, system, prompt string, output any) error
	Close()
}

type GeminiProvider struct {
	client      *genai.Client
	modelName   string
	temperature float32
	maxTokens   int32
}

// NewGeminiProvider returns nil, nil when apiKey is empty so callers can fall
// back to their templates.
func NewGeminiProvider(ctx context.Context, apiKey, modelName string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	if modelName == "" {
		modelName = DefaultModel
	}

	return &GeminiProvider{
		client:      client,
		modelName:   modelName,
		temperature: 0.7,
		maxTokens:   400,
	}, nil
}

// model builds a fresh handle per call; GenerativeModel settings are not safe to share.
func (g *GeminiProvider) model(system string) *genai.GenerativeModel {
	m := g.client.GenerativeModel(g.modelName)
	m.SetTemperature(g.temperature)
	m.SetMaxOutputTokens(g.maxTokens)
	if system != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	return m
}

func (g *GeminiProvider) GenerateText(ctx context.Context, prompt string) (string, error) {
	return g.GenerateWithSystem(ctx, "", prompt)
}

func (g *GeminiProvider) GenerateWithSystem(ctx context.Context, system, prompt string) (string, error) {
	resp, err := g.model(system).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	return firstText(resp)
}

func (g *GeminiProvider) GenerateStructured(ctx context.Context, system, prompt string, output any) error {
	m := g.model(system)
	m.ResponseMIMEType = "application/json"

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return err
	}
	txt, err := firstText(resp)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(txt), output); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	return nil
}

func (g *GeminiProvider) Close() {
	_ = g.client.Close()
}

func firstText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no response from LLM")
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			return strings.TrimSpace(string(txt)), nil
		}
	}
	return "", ErrNoContent
}
