package openai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oblabs/memlifecycle/pkg/errs"
	"github.com/oblabs/memlifecycle/pkg/llm"
)

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(&Config{})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindFatal))
}

func TestGenerateWithMessages_RejectsEmptyMessages(t *testing.T) {
	c, err := NewClient(&Config{APIKey: "sk-test"})
	require.NoError(t, err)

	_, err = c.GenerateWithMessages(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindInvalidInput))
}

func TestNewClient_DefaultsModel(t *testing.T) {
	c, err := NewClient(&Config{APIKey: "sk-test"})
	require.NoError(t, err)
	assert.NotEmpty(t, c.model)
}

var _ llm.Provider = (*Client)(nil)
