// Package classifier implements the memory classifier (C5): decide the
// category of a new memory's text. Grounded on the teacher's
// pkg/intelligence/importance.go two-tier pattern (try the LLM path first,
// fall back to a deterministic rule when the LLM is unavailable or
// unconfident), retargeted to spec.md §4.5's exact rule table.
package classifier

import (
	"context"
	"strings"

	"github.com/oblabs/memlifecycle/pkg/llmjudge"
)

// Category is the closed set spec.md §3 defines.
type Category string

const (
	Preference   Category = "PREFERENCE"
	Fact         Category = "FACT"
	Event        Category = "EVENT"
	Skill        Category = "SKILL"
	Relationship Category = "RELATIONSHIP"
	Health       Category = "HEALTH"
	Other        Category = "OTHER"
)

// Source records which path produced the classification.
type Source string

const (
	SourceLLM  Source = "LLM"
	SourceRule Source = "RULE"
)

// confidenceFloor is the minimum LLM confidence accepted before falling
// back to the rule table, per spec.md §4.5.
const confidenceFloor = 0.4

// ruleEntry is one row of the spec's keyword table. Table order is the
// precedence order: first match wins.
type ruleEntry struct {
	category Category
	keywords []string
}

// ruleTable is spec.md §4.5's table, verbatim, in its specified order.
var ruleTable = []ruleEntry{
	{Preference, []string{"prefer", "like", "favorite", "喜欢"}},
	{Health, []string{"allerg", "过敏", "blood"}},
	{Skill, []string{"learn", "practice", "学习"}},
	{Event, []string{"yesterday", "today", "went"}},
	{Fact, []string{"is", "was", "are"}},
	{Relationship, []string{"friend", "colleague", "family"}},
}

// Classifier is the memory classifier (C5).
type Classifier struct {
	judge *llmjudge.Judge
}

// New builds a Classifier over judge. judge may wrap a nil llm.Provider,
// in which case every call falls straight to the rule table.
func New(judge *llmjudge.Judge) *Classifier {
	return &Classifier{judge: judge}
}

// Classify returns the category, the confidence that produced it (1.0 for
// rule-table matches, the LLM's reported confidence otherwise), and which
// path was used.
func (c *Classifier) Classify(ctx context.Context, text string) (Category, float64, Source) {
	if c.judge != nil && c.judge.Available() {
		cat, confidence, err := c.judge.Classify(ctx, text)
		if err == nil && confidence >= confidenceFloor && isKnownCategory(cat) {
			return Category(cat), confidence, SourceLLM
		}
	}

	cat := classifyByRule(text)
	return cat, 1.0, SourceRule
}

// classifyByRule applies the fixed keyword table in table order against
// normalized (lowercased) content; first match wins.
func classifyByRule(text string) Category {
	normalized := strings.ToLower(text)
	for _, entry := range ruleTable {
		for _, kw := range entry.keywords {
			if strings.Contains(normalized, strings.ToLower(kw)) {
				return entry.category
			}
		}
	}
	return Other
}

func isKnownCategory(cat string) bool {
	switch Category(cat) {
	case Preference, Fact, Event, Skill, Relationship, Health, Other:
		return true
	default:
		return false
	}
}
