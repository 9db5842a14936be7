package runtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRetryPolicy_NextAttempt(t *testing.T) {
	policy := RetryPolicy{Min: time.Second, Max: 10 * time.Second, Factor: 2}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		attempts int
		want     time.Duration
	}{
		{0, time.Second},
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
		{5, 10 * time.Second},
		{50, 10 * time.Second},
	}
	for _, tt := range tests {
		require.Equal(t, now.Add(tt.want), policy.NextAttempt(tt.attempts, now), "attempts=%d", tt.attempts)
	}
}
