package engine

import (
	"context"
	"fmt"
	"hash/fnv"
	"regexp"
	"strconv"
	"strings"

	"github.com/oblabs/memlifecycle/pkg/llm"
)

// fakeEmbedder is a deterministic, network-free embedder.Provider stand-in:
// a hashed bag-of-words vector, so cosine similarity tracks shared-word
// overlap the way a real embedding tracks shared meaning closely enough to
// drive the engine's similarity-gated pipeline in tests.
type fakeEmbedder struct {
	dims int
}

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{dims: 64}
}

var wordSplit = regexp.MustCompile(`[^a-zA-Z0-9\p{Han}]+`)

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, f.dims)
	for _, w := range wordSplit.Split(strings.ToLower(text), -1) {
		if w == "" {
			continue
		}
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		vec[int(h.Sum32())%f.dims]++
	}
	return vec, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := f.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int { return f.dims }
func (f *fakeEmbedder) Close() error    { return nil }

// scriptedLLM is a test-local llm.Provider stand-in for llmjudge.Judge. It
// inspects the prompt text llmjudge builds and replies deterministically:
// classification always degrades (forcing the engine's rule-table fallback,
// which is what every scenario below exercises), conflict verdicts are
// looked up by exact (candidateText, newText) pair, and merge synthesizes by
// concatenation.
type scriptedLLM struct {
	conflicts map[string]string
}

func newScriptedLLM() *scriptedLLM {
	return &scriptedLLM{conflicts: make(map[string]string)}
}

// onConflict scripts the verdict returned for JudgeConflict(candidateText, newText).
func (s *scriptedLLM) onConflict(candidateText, newText, verdict string) *scriptedLLM {
	s.conflicts[candidateText+"|"+newText] = verdict
	return s
}

func (s *scriptedLLM) Generate(ctx context.Context, prompt string, opts ...llm.GenerateOption) (string, error) {
	return s.GenerateWithMessages(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

var quotedAfter = func(label string) *regexp.Regexp {
	return regexp.MustCompile(label + `: (".*")`)
}

func extractQuoted(content, label string) string {
	m := quotedAfter(label).FindStringSubmatch(content)
	if len(m) != 2 {
		return ""
	}
	unquoted, err := strconv.Unquote(m[1])
	if err != nil {
		return ""
	}
	return unquoted
}

func (s *scriptedLLM) GenerateWithMessages(ctx context.Context, messages []llm.Message, opts ...llm.GenerateOption) (string, error) {
	content := messages[0].Content

	switch {
	case strings.Contains(content, "Classify the following statement"):
		// Degrade deliberately: empty body fails json.Unmarshal, and
		// llmjudge.Classify treats that as "no opinion", not an error.
		return "", nil

	case strings.Contains(content, "classify their relationship"):
		a := extractQuoted(content, "Statement A")
		b := extractQuoted(content, "Statement B")
		verdict := s.conflicts[a+"|"+b]
		if verdict == "" {
			verdict = "COMPLEMENTARY"
		}
		return fmt.Sprintf(`{"verdict": %q}`, verdict), nil

	case strings.Contains(content, "Merge these two"):
		old := extractQuoted(content, "Old statement")
		newText := extractQuoted(content, "New statement")
		return fmt.Sprintf(`{"merged_text": %q}`, old+"; "+newText), nil
	}

	return "", nil
}

func (s *scriptedLLM) Close() error { return nil }
