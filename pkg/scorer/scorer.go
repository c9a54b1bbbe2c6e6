// Package scorer implements the memory importance scorer (C6): a numeric
// importance in [0,1] blending a fixed per-category weight with an
// optional LLM-supplied weight. Grounded on the teacher's
// pkg/intelligence/importance.go ImportanceEvaluator, which blends a
// rule-based keyword score with an LLM score the same way; narrowed to the
// single closed-form weighted sum spec.md §4.6 fixes.
package scorer

import (
	"context"

	"github.com/oblabs/memlifecycle/pkg/classifier"
	"github.com/oblabs/memlifecycle/pkg/llmjudge"
)

// categoryWeight is spec.md §4.6's fixed per-category weight table.
var categoryWeight = map[classifier.Category]float64{
	classifier.Health:       1.0,
	classifier.Fact:         0.7,
	classifier.Skill:        0.7,
	classifier.Relationship: 0.6,
	classifier.Preference:   0.5,
	classifier.Event:        0.3,
	classifier.Other:        0.2,
}

// fallbackLLMWeight is used whenever the LLM is unavailable, per spec.md
// §4.6 ("if C2 is unavailable, use 0.5 and document the fallback").
const fallbackLLMWeight = 0.5

// Scorer is the memory importance scorer (C6).
type Scorer struct {
	judge *llmjudge.Judge
}

// New builds a Scorer over judge.
func New(judge *llmjudge.Judge) *Scorer {
	return &Scorer{judge: judge}
}

// Score computes importance = clip(0.3 + 0.4*category_weight + 0.3*llm_weight).
//
// The llm_weight term reuses the classifier's own confidence as a proxy for
// how strongly the LLM backs this categorization, since C2 exposes no
// separate "importance" call; when the LLM is unavailable the fixed
// fallback weight is used instead.
func (s *Scorer) Score(ctx context.Context, category classifier.Category, llmConfidence float64, llmAvailable bool) float64 {
	cw, ok := categoryWeight[category]
	if !ok {
		cw = categoryWeight[classifier.Other]
	}

	llmWeight := fallbackLLMWeight
	if llmAvailable {
		llmWeight = llmConfidence
	}

	importance := 0.3 + 0.4*cw + 0.3*llmWeight
	return clip01(importance)
}

func clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
