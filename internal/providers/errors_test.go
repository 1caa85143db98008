package providers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyError(t *testing.T) {
	cases := map[string]ErrorType{
		"insufficient_quota": ErrorQuota,
		"429 rate":           ErrorRate,
		"context too long":   ErrorContext,
		"timeout":            ErrorTransient,
		"bad request":        ErrorPermanent,
	}
	for msg, want := range cases {
		require.Equal(t, want, ClassifyError(errors.New(msg)), msg)
	}
	require.Equal(t, ErrorType(""), ClassifyError(nil))
}

func TestRetryable(t *testing.T) {
	require.True(t, Retryable(errors.New("service temporarily unavailable")))
	require.False(t, Retryable(errors.New("invalid file format")))
}
