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
	"strings"

	"github.com/tireder/betting-tips/services/panel/merge"
	"github.com/tireder/betting-tips/services/panel/value"
)

// analysisTemperature keeps the model factual; betting analysis is not
// the place for creative writing.
const analysisTemperature float32 = 0.3

const maxAnalysisTokens = 1500

// Analyst answers betting questions over merged match data through an
// LLM backend.
type Analyst struct {
	llm Client
}

// NewAnalyst creates an Analyst over the given LLM client.
func NewAnalyst(llm Client) *Analyst {
	return &Analyst{llm: llm}
}

// AnalyzeMatch produces a narrative deep dive for one merged match.
func (a *Analyst) AnalyzeMatch(ctx context.Context, rec merge.Record, analysis value.Analysis) (string, error) {
	out, err := a.generate(ctx, MatchPrompt(rec, analysis))
	if err != nil {
		return "", fmt.Errorf("analyze %s: %w", analysis.Match, err)
	}
	return out, nil
}

// Ask answers a free-form question grounded in the given analyses.
func (a *Analyst) Ask(ctx context.Context, question string, analyses []value.Analysis) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("ask: empty question")
	}
	out, err := a.generate(ctx, QuestionPrompt(question, analyses))
	if err != nil {
		return "", fmt.Errorf("ask: %w", err)
	}
	return out, nil
}

func (a *Analyst) generate(ctx context.Context, prompt string) (string, error) {
	temp := analysisTemperature
	maxTokens := maxAnalysisTokens
	return a.llm.Generate(ctx, prompt, GenerationParams{
		Temperature: &temp,
		MaxTokens:   &maxTokens,
	})
}
