// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package ai wraps the text completion provider used to draft summaries.

The contract is a single request/response call: a system instruction plus a
prompt in, free text out. There is no streaming and no structured output; the
generation pipeline splits the text itself.
*/
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ErrEmptyCompletion is returned when the provider answers without any text.
var ErrEmptyCompletion = errors.New("ai: provider returned no text")

// TextGenerator produces free text from a prompt.
type TextGenerator interface {
	GenerateText(context context.Context, system, prompt string) (string, error)
}

// Options tunes a [GeminiGenerator].
type Options struct {
	Model           string
	Temperature     float32
	MaxOutputTokens int32
}

// GeminiGenerator implements [TextGenerator] with Google's Gemini API.
type GeminiGenerator struct {
	client  *genai.Client
	options Options
}

// NewGeminiGenerator opens a client authenticated with apiKey.
func NewGeminiGenerator(context context.Context, apiKey string, options Options) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("ai: GEMINI_API_KEY is required")
	}
	if options.Model == "" {
		options.Model = "gemini-2.0-flash"
	}
	if options.Temperature == 0 {
		options.Temperature = 0.7
	}
	if options.MaxOutputTokens == 0 {
		options.MaxOutputTokens = 2000
	}

	client, err := genai.NewClient(context, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("ai: failed to create gemini client: %w", err)
	}

	return &GeminiGenerator{client: client, options: options}, nil
}

// GenerateText implements [TextGenerator].
func (generator *GeminiGenerator) GenerateText(context context.Context, system, prompt string) (string, error) {
	model := generator.client.GenerativeModel(generator.options.Model)
	model.SetTemperature(generator.options.Temperature)
	model.SetMaxOutputTokens(generator.options.MaxOutputTokens)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	response, err := model.GenerateContent(context, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("ai: gemini generate: %w", err)
	}

	return collectText(response)
}

// Close releases the underlying client.
func (generator *GeminiGenerator) Close() error {
	return generator.client.Close()
}

// collectText concatenates the text parts of the first candidate.
func collectText(response *genai.GenerateContentResponse) (string, error) {
	if response == nil || len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return "", ErrEmptyCompletion
	}

	var builder strings.Builder
	for _, part := range response.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			builder.WriteString(string(text))
		}
	}

	result := strings.TrimSpace(builder.String())
	if result == "" {
		return "", ErrEmptyCompletion
	}
	return result, nil
}
