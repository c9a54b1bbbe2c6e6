// Package llmjudge implements the three prompted operations C2 names:
// classify, judge_conflict, and merge. Grounded on the teacher's
// pkg/intelligence/decision.go DecisionMaker — same shape of "build a
// prompt pinning JSON output, call llm.Provider.GenerateWithMessages,
// strip code fences, json.Unmarshal into an anonymous struct" — but
// generalized from the teacher's ADD/UPDATE/DELETE/NONE decision schema to
// spec.md §4.2's classify/judge_conflict/merge schema.
package llmjudge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/oblabs/memlifecycle/pkg/errs"
	"github.com/oblabs/memlifecycle/pkg/llm"
)

// Verdict is one of the four conflict outcomes spec.md §3 names.
type Verdict string

const (
	VerdictNone          Verdict = "NONE"
	VerdictComplementary Verdict = "COMPLEMENTARY"
	VerdictContradicts   Verdict = "CONTRADICTS"
	VerdictSupersedes    Verdict = "SUPERSEDES"
	VerdictUnknown       Verdict = "UNKNOWN"
)

// Judge wraps an llm.Provider with the three structured calls the engine needs.
// The engine never parses free LLM prose itself; every caller of Judge gets
// back either a pinned enum/float result or an error — malformed model
// output is normalized to VerdictUnknown / zero confidence here, never
// propagated as a parse error the caller must handle specially.
type Judge struct {
	provider llm.Provider
}

// New wraps provider. A nil provider is valid: every method then returns
// errs.KindProviderUnavailable immediately, letting callers fall back to
// rule-based paths without a type switch.
func New(provider llm.Provider) *Judge {
	return &Judge{provider: provider}
}

// Available reports whether a provider is configured.
func (j *Judge) Available() bool {
	return j.provider != nil
}

// Classify asks the LLM to categorize text, returning the closed-set
// category and a confidence in [0,1]. Malformed output yields ("", 0, nil).
func (j *Judge) Classify(ctx context.Context, text string) (category string, confidence float64, err error) {
	if j.provider == nil {
		return "", 0, errs.New("llmjudge.Classify", errs.KindProviderUnavailable, errs.ErrProviderUnavailable)
	}

	prompt := fmt.Sprintf(`Classify the following statement into exactly one category from this closed set: PREFERENCE, FACT, EVENT, SKILL, RELATIONSHIP, HEALTH, OTHER.

Statement: %q

Respond with JSON only, no commentary:
{"category": "<ONE_OF_THE_ABOVE>", "confidence": <float 0 to 1>}`, text)

	resp, callErr := j.provider.GenerateWithMessages(ctx, []llm.Message{{Role: "user", Content: prompt}})
	if callErr != nil {
		return "", 0, errs.New("llmjudge.Classify", errs.KindProviderUnavailable, callErr)
	}

	var parsed struct {
		Category   string  `json:"category"`
		Confidence float64 `json:"confidence"`
	}
	if jsonErr := json.Unmarshal([]byte(stripCodeFences(resp)), &parsed); jsonErr != nil {
		return "", 0, nil
	}

	return strings.ToUpper(strings.TrimSpace(parsed.Category)), parsed.Confidence, nil
}

// JudgeConflict asks whether two memory texts conflict. On malformed LLM
// output it returns VerdictUnknown (never an error), matching spec.md
// §4.2's "engine treats the result as NONE/UNKNOWN ... degrades to
// rule-based fallback".
func (j *Judge) JudgeConflict(ctx context.Context, textA, textB string) (Verdict, error) {
	if j.provider == nil {
		return VerdictUnknown, errs.New("llmjudge.JudgeConflict", errs.KindProviderUnavailable, errs.ErrProviderUnavailable)
	}

	prompt := fmt.Sprintf(`Compare these two personal-memory statements about the same person and classify their relationship as exactly one of: NONE, COMPLEMENTARY, CONTRADICTS, SUPERSEDES.

- NONE: unrelated statements
- COMPLEMENTARY: both can be true at once, neither invalidates the other
- CONTRADICTS: mutually exclusive, but neither is clearly a correction of the other in time
- SUPERSEDES: statement B is a newer fact that replaces statement A (e.g. a location or status change)

Statement A: %q
Statement B: %q

Respond with JSON only, no commentary:
{"verdict": "<ONE_OF_THE_ABOVE>"}`, textA, textB)

	resp, callErr := j.provider.GenerateWithMessages(ctx, []llm.Message{{Role: "user", Content: prompt}})
	if callErr != nil {
		return VerdictUnknown, errs.New("llmjudge.JudgeConflict", errs.KindProviderUnavailable, callErr)
	}

	var parsed struct {
		Verdict string `json:"verdict"`
	}
	if jsonErr := json.Unmarshal([]byte(stripCodeFences(resp)), &parsed); jsonErr != nil {
		return VerdictUnknown, nil
	}

	switch Verdict(strings.ToUpper(strings.TrimSpace(parsed.Verdict))) {
	case VerdictNone, VerdictComplementary, VerdictContradicts, VerdictSupersedes:
		return Verdict(strings.ToUpper(strings.TrimSpace(parsed.Verdict))), nil
	default:
		return VerdictUnknown, nil
	}
}

// Merge asks the LLM to synthesize a single merged text from an old and new
// memory. Used only when the merge strategy decides to merge rather than
// replace outright (spec.md §4.8).
func (j *Judge) Merge(ctx context.Context, textOld, textNew string) (string, error) {
	if j.provider == nil {
		return "", errs.New("llmjudge.Merge", errs.KindProviderUnavailable, errs.ErrProviderUnavailable)
	}

	prompt := fmt.Sprintf(`Merge these two personal-memory statements about the same person into one self-contained statement that preserves every fact from both, resolving the contradiction in favor of the newer statement where they truly conflict.

Old statement: %q
New statement: %q

Respond with JSON only, no commentary:
{"merged_text": "<merged statement>"}`, textOld, textNew)

	resp, callErr := j.provider.GenerateWithMessages(ctx, []llm.Message{{Role: "user", Content: prompt}})
	if callErr != nil {
		return "", errs.New("llmjudge.Merge", errs.KindProviderUnavailable, callErr)
	}

	var parsed struct {
		MergedText string `json:"merged_text"`
	}
	if jsonErr := json.Unmarshal([]byte(stripCodeFences(resp)), &parsed); jsonErr != nil || parsed.MergedText == "" {
		return "", errs.New("llmjudge.Merge", errs.KindProviderUnavailable, errs.ErrProviderUnavailable)
	}

	return parsed.MergedText, nil
}

// stripCodeFences mirrors the teacher's removeCodeBlocks
// (pkg/intelligence/decision.go): strip ```json/``` fences models love to
// wrap structured output in.
func stripCodeFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
