package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	for _, tc := range []struct {
		name  string
		err   error
		exp   FailureKind
		expOk bool
	}{
		{
			name: "plain error",
			err:  errors.New("boom"),
		},
		{
			name:  "provider",
			err:   ProviderError("search failed", errors.New("quota")),
			exp:   FailureProvider,
			expOk: true,
		},
		{
			name:  "wrapped not found",
			err:   fmt.Errorf("channel: %w", NotFound("no videos")),
			exp:   FailureNotFound,
			expOk: true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			kind, ok := KindOf(tc.err)
			assert.Equal(t, tc.expOk, ok)
			assert.Equal(t, tc.exp, kind)
		})
	}
}

func TestMalformedKeepsRaw(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	err := Malformed(`{"summary": `, cause)

	var f *Failure
	require.True(t, errors.As(error(err), &f))
	assert.Equal(t, FailureMalformed, f.Kind)
	assert.Equal(t, `{"summary": `, f.Raw)
	assert.ErrorIs(t, err, cause)
}

func TestSentimentValid(t *testing.T) {
	assert.True(t, SentimentNeutral.Valid())
	assert.False(t, Sentiment("bullish").Valid())
	assert.False(t, Sentiment("").Valid())
}
