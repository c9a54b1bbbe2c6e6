package classifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oblabs/memlifecycle/pkg/llmjudge"
)

func TestClassify_RuleFallback_NoLLM(t *testing.T) {
	c := New(llmjudge.New(nil))

	cat, _, source := c.Classify(context.Background(), "I prefer tea over coffee")
	assert.Equal(t, Preference, cat)
	assert.Equal(t, SourceRule, source)
}

func TestClassify_RuleTable_HealthBeatsFact(t *testing.T) {
	c := New(llmjudge.New(nil))

	// "allerg" (HEALTH) should win over "is" (FACT) since HEALTH is earlier in table order.
	cat, _, _ := c.Classify(context.Background(), "My son is allergic to peanuts")
	assert.Equal(t, Health, cat)
}

func TestClassify_RuleTable_DefaultsToOther(t *testing.T) {
	c := New(llmjudge.New(nil))

	cat, confidence, source := c.Classify(context.Background(), "xyzzy plugh")
	assert.Equal(t, Other, cat)
	assert.Equal(t, SourceRule, source)
	assert.Equal(t, 1.0, confidence)
}

func TestClassify_RuleTable_EventKeyword(t *testing.T) {
	c := New(llmjudge.New(nil))

	cat, _, _ := c.Classify(context.Background(), "I went to the park yesterday")
	assert.Equal(t, Event, cat)
}

func TestClassify_RuleTable_RelationshipKeyword(t *testing.T) {
	c := New(llmjudge.New(nil))

	cat, _, _ := c.Classify(context.Background(), "My colleague gave me a ride")
	assert.Equal(t, Relationship, cat)
}
