// Package merge implements the memory merge strategy (C8): given a
// conflict list, pick the single applicable action. New code — the
// teacher carries no merge-arbitration logic of its own — built directly
// from spec.md §4.8's rule order, using the same "first matching rule
// wins" shape as classifier's rule table.
package merge

import (
	"context"

	"github.com/oblabs/memlifecycle/pkg/conflict"
	"github.com/oblabs/memlifecycle/pkg/llmjudge"
)

// ActionKind is the decided merge action.
type ActionKind string

const (
	Replace      ActionKind = "REPLACE"
	KeepBothLink ActionKind = "KEEP_BOTH_LINK"
	Merge        ActionKind = "MERGE"
	InsertNew    ActionKind = "INSERT_NEW"
)

// highImportanceThreshold: a CONTRADICTS candidate at or above this
// importance is never auto-overwritten, per spec.md §4.8.
const highImportanceThreshold = 0.8

// Action is the decided merge action plus the data needed to apply it.
type Action struct {
	Kind ActionKind

	// Target is the existing memory id the action applies to (Replace,
	// KeepBothLink, Merge). Empty for InsertNew.
	Target string

	// LinkType is the relationship type to create alongside the action:
	// RELATED_TO for InsertNew-against-COMPLEMENTARY candidates,
	// CONTRADICTS for KeepBothLink.
	LinkType string

	// NewContent is the text to store on the resulting active memory:
	// the new memory's own text for Replace/InsertNew, the synthesized
	// merged text for Merge.
	NewContent string

	// ComplementaryTargets lists existing memory ids to link via
	// RELATED_TO when Kind is InsertNew.
	ComplementaryTargets []string
}

// Strategy is the memory merge strategy (C8).
type Strategy struct {
	judge *llmjudge.Judge
}

// New builds a Strategy over judge, used only for the MERGE action's
// text-synthesis call.
func New(judge *llmjudge.Judge) *Strategy {
	return &Strategy{judge: judge}
}

// Decide applies spec.md §4.8's rules in order and returns one Action.
func (s *Strategy) Decide(ctx context.Context, newContent string, verdicts []conflict.Verdict) Action {
	for _, v := range verdicts {
		if v.Verdict == llmjudge.VerdictSupersedes {
			return Action{Kind: Replace, Target: v.Candidate.ID, NewContent: newContent}
		}
	}

	for _, v := range verdicts {
		if v.Verdict == llmjudge.VerdictContradicts && v.Candidate.Importance >= highImportanceThreshold {
			return Action{Kind: KeepBothLink, Target: v.Candidate.ID, LinkType: "CONTRADICTS", NewContent: newContent}
		}
	}

	for _, v := range verdicts {
		if v.Verdict == llmjudge.VerdictContradicts {
			merged := newContent
			if s.judge != nil && s.judge.Available() {
				if text, err := s.judge.Merge(ctx, v.Candidate.Content, newContent); err == nil && text != "" {
					merged = text
				}
			}
			return Action{Kind: Merge, Target: v.Candidate.ID, NewContent: merged}
		}
	}

	var complementary []string
	for _, v := range verdicts {
		if v.Verdict == llmjudge.VerdictComplementary {
			complementary = append(complementary, v.Candidate.ID)
		}
	}
	return Action{Kind: InsertNew, LinkType: "RELATED_TO", NewContent: newContent, ComplementaryTargets: complementary}
}
