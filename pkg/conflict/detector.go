// Package conflict implements the memory conflict detector (C7): given a
// new memory candidate and the top-k similar existing memories, produce an
// ordered list of conflict verdicts. Grounded on the teacher's
// pkg/intelligence/dedup.go DedupManager (same top-k-by-similarity probe
// shape) for the candidate-gathering half, and on
// pkg/intelligence/decision.go for the LLM-call-with-degrade-on-failure
// half; the category/similarity gate and verdict mapping are new per
// spec.md §4.7, since the teacher has no conflict taxonomy of its own.
package conflict

import (
	"context"
	"sort"

	"github.com/oblabs/memlifecycle/pkg/llmjudge"
)

// DefaultSimilarityThreshold (τ_sim) and DefaultTopK are spec.md §4.7's defaults.
const (
	DefaultSimilarityThreshold = 0.75
	DefaultTopK                = 8

	// crossCategoryGate: below this similarity, a category mismatch alone
	// is enough to call it NONE without consulting the LLM.
	crossCategoryGate = 0.85
)

// Candidate is one existing memory considered against the new one.
type Candidate struct {
	ID         string
	Content    string
	Category   string
	Importance float64
	Similarity float64
}

// NewMemory is the incoming candidate being checked for conflicts.
type NewMemory struct {
	Content  string
	Category string
}

// Verdict pairs a candidate with its conflict outcome.
type Verdict struct {
	Candidate Candidate
	Verdict   llmjudge.Verdict
}

// Detector is the memory conflict detector (C7).
type Detector struct {
	judge *llmjudge.Judge
}

// New builds a Detector over judge.
func New(judge *llmjudge.Judge) *Detector {
	return &Detector{judge: judge}
}

// Detect evaluates every candidate (already filtered to the caller's top-k,
// same-user, similarity >= τ_sim set) and returns verdicts ordered
// descending by similarity, per spec.md §4.7.
func (d *Detector) Detect(ctx context.Context, newMem NewMemory, candidates []Candidate) []Verdict {
	ordered := append([]Candidate(nil), candidates...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Similarity > ordered[j].Similarity })

	out := make([]Verdict, 0, len(ordered))
	for _, cand := range ordered {
		out = append(out, Verdict{Candidate: cand, Verdict: d.judgeOne(ctx, newMem, cand)})
	}
	return out
}

func (d *Detector) judgeOne(ctx context.Context, newMem NewMemory, cand Candidate) llmjudge.Verdict {
	if cand.Category != newMem.Category && cand.Similarity < crossCategoryGate {
		return llmjudge.VerdictNone
	}

	if d.judge == nil || !d.judge.Available() {
		// LLM unavailable: safe default for same-category pairs is
		// COMPLEMENTARY (no silent data loss), per spec.md §4.7 step 3.
		return llmjudge.VerdictComplementary
	}

	verdict, err := d.judge.JudgeConflict(ctx, cand.Content, newMem.Content)
	if err != nil {
		return llmjudge.VerdictComplementary
	}
	if verdict == llmjudge.VerdictUnknown {
		return llmjudge.VerdictComplementary
	}
	return verdict
}
