package errs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_NilErrReturnsNil(t *testing.T) {
	assert.Nil(t, New("op", KindInvalidInput, nil))
}

func TestError_UnwrapsToSentinel(t *testing.T) {
	e := New("engine.Add", KindNotFound, ErrNotFound)
	assert.ErrorIs(t, e, ErrNotFound)
}

func TestError_UnwrapsToWrappedErr(t *testing.T) {
	underlying := errors.New("boom")
	e := New("engine.Add", KindProviderUnavailable, underlying)
	assert.ErrorIs(t, e, underlying)
}

func TestIs_MatchesKind(t *testing.T) {
	e := New("op", KindConcurrency, ErrConcurrency)
	assert.True(t, Is(e, KindConcurrency))
	assert.False(t, Is(e, KindFatal))
}

func TestRetryable(t *testing.T) {
	cases := map[Kind]bool{
		KindProviderUnavailable: true,
		KindProviderTimeout:     true,
		KindProviderExhausted:   true,
		KindInvalidInput:        false,
		KindNotFound:            false,
		KindFatal:               false,
	}
	for kind, want := range cases {
		e := New("op", kind, errors.New("x")).(*Error)
		assert.Equal(t, want, e.Retryable(), kind)
	}
}
