package llmjudge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oblabs/memlifecycle/pkg/llm"
)

// fakeProvider is a test-local stub satisfying llm.Provider; it never makes
// a network call and returns whatever script is configured per test.
type fakeProvider struct {
	response string
	err      error
}

func (f *fakeProvider) Generate(ctx context.Context, prompt string, opts ...llm.GenerateOption) (string, error) {
	return f.response, f.err
}

func (f *fakeProvider) GenerateWithMessages(ctx context.Context, messages []llm.Message, opts ...llm.GenerateOption) (string, error) {
	return f.response, f.err
}

func (f *fakeProvider) Close() error { return nil }

func TestAvailable_NilProviderIsUnavailable(t *testing.T) {
	j := New(nil)
	assert.False(t, j.Available())
}

func TestAvailable_ConfiguredProviderIsAvailable(t *testing.T) {
	j := New(&fakeProvider{})
	assert.True(t, j.Available())
}

func TestClassify_NilProviderReturnsUnavailableError(t *testing.T) {
	j := New(nil)
	_, _, err := j.Classify(context.Background(), "I like coffee")
	require.Error(t, err)
}

func TestClassify_ParsesWellFormedJSON(t *testing.T) {
	j := New(&fakeProvider{response: `{"category": "preference", "confidence": 0.9}`})
	category, confidence, err := j.Classify(context.Background(), "I like coffee")
	require.NoError(t, err)
	assert.Equal(t, "PREFERENCE", category)
	assert.Equal(t, 0.9, confidence)
}

func TestClassify_StripsCodeFences(t *testing.T) {
	j := New(&fakeProvider{response: "```json\n{\"category\": \"fact\", \"confidence\": 0.5}\n```"})
	category, confidence, err := j.Classify(context.Background(), "Paris is the capital of France")
	require.NoError(t, err)
	assert.Equal(t, "FACT", category)
	assert.Equal(t, 0.5, confidence)
}

func TestClassify_MalformedJSONDegradesToZeroValueNoError(t *testing.T) {
	j := New(&fakeProvider{response: "not json at all"})
	category, confidence, err := j.Classify(context.Background(), "whatever")
	require.NoError(t, err)
	assert.Equal(t, "", category)
	assert.Equal(t, 0.0, confidence)
}

func TestJudgeConflict_NilProviderReturnsUnknownAndError(t *testing.T) {
	j := New(nil)
	verdict, err := j.JudgeConflict(context.Background(), "a", "b")
	require.Error(t, err)
	assert.Equal(t, VerdictUnknown, verdict)
}

func TestJudgeConflict_ParsesKnownVerdict(t *testing.T) {
	j := New(&fakeProvider{response: `{"verdict": "contradicts"}`})
	verdict, err := j.JudgeConflict(context.Background(), "I am allergic to peanuts", "I love peanut butter")
	require.NoError(t, err)
	assert.Equal(t, VerdictContradicts, verdict)
}

func TestJudgeConflict_UnrecognizedVerdictStringDegradesToUnknown(t *testing.T) {
	j := New(&fakeProvider{response: `{"verdict": "MAYBE"}`})
	verdict, err := j.JudgeConflict(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, VerdictUnknown, verdict)
}

func TestJudgeConflict_MalformedJSONDegradesToUnknownNoError(t *testing.T) {
	j := New(&fakeProvider{response: "garbage"})
	verdict, err := j.JudgeConflict(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, VerdictUnknown, verdict)
}

func TestMerge_NilProviderReturnsError(t *testing.T) {
	j := New(nil)
	_, err := j.Merge(context.Background(), "old", "new")
	require.Error(t, err)
}

func TestMerge_ReturnsMergedText(t *testing.T) {
	j := New(&fakeProvider{response: `{"merged_text": "Lives in Shanghai, previously Beijing"}`})
	merged, err := j.Merge(context.Background(), "Lives in Beijing", "Lives in Shanghai")
	require.NoError(t, err)
	assert.Equal(t, "Lives in Shanghai, previously Beijing", merged)
}

func TestMerge_EmptyMergedTextIsTreatedAsFailure(t *testing.T) {
	j := New(&fakeProvider{response: `{"merged_text": ""}`})
	_, err := j.Merge(context.Background(), "old", "new")
	require.Error(t, err)
}
