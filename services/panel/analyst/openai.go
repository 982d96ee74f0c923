// Copyright (C) 2025 Betting Tips Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package analyst

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/tireder/betting-tips/pkg/secrets"
)

const defaultModel = "gpt-4o"

// OpenAIClient implements Client on the OpenAI chat completion API.
type OpenAIClient struct {
	client *openai.Client
	model  string
	system string
}

// NewOpenAIClient builds a client from the resolved secret store. The
// model comes from OPENAI_MODEL, defaulting to gpt-4o. The betting
// system prompt is fixed at construction time.
func NewOpenAIClient(store *secrets.Store) (*OpenAIClient, error) {
	apiKey, err := store.Open(secrets.OpenAIKey)
	if err != nil {
		return nil, fmt.Errorf("openai client: %w", err)
	}

	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = defaultModel
		slog.Warn("OPENAI_MODEL not set, defaulting to "+defaultModel, "model", model)
	}
	slog.Info("Initializing OpenAI client", "model", model)

	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		model:  model,
		system: SystemPrompt(time.Now()),
	}, nil
}

// Generate implements the Client interface.
func (o *OpenAIClient) Generate(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	slog.Debug("Generating analysis via OpenAI", "model", o.model)

	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: o.system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if params.Temperature != nil {
		req.Temperature = *params.Temperature
	}
	if params.MaxTokens != nil {
		req.MaxCompletionTokens = *params.MaxTokens
	}
	if params.TopP != nil {
		req.TopP = *params.TopP
	}
	if len(params.Stop) > 0 {
		req.Stop = params.Stop
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		slog.Error("OpenAI API call failed", "error", err)
		return "", fmt.Errorf("OpenAI API call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		slog.Warn("OpenAI returned no choices")
		return "", fmt.Errorf("OpenAI returned no choices")
	}

	slog.Debug("Received response from OpenAI", "finish_reason", resp.Choices[0].FinishReason)
	return resp.Choices[0].Message.Content, nil
}
