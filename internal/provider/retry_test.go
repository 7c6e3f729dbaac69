package provider

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	noteerrors "github.com/notesmith/notesmith/pkg/errors"
)

func TestIsRetryableStatus(t *testing.T) {
	t.Parallel()

	assert.True(t, isRetryableStatus(408))
	assert.True(t, isRetryableStatus(429))
	assert.True(t, isRetryableStatus(500))
	assert.True(t, isRetryableStatus(503))
	assert.False(t, isRetryableStatus(400))
	assert.False(t, isRetryableStatus(401))
	assert.False(t, isRetryableStatus(404))
	assert.False(t, isRetryableStatus(200))
}

func TestIsRetryableError(t *testing.T) {
	t.Parallel()

	assert.False(t, isRetryableError(nil))
	assert.False(t, isRetryableError(context.Canceled))
	assert.False(t, isRetryableError(context.DeadlineExceeded))
	assert.False(t, isRetryableError(errors.New("plain failure")))

	rateLimited := noteerrors.NewProviderError("openai", 429, "slow down", nil)
	assert.True(t, isRetryableError(rateLimited))

	badRequest := noteerrors.NewProviderError("openai", 400, "bad payload", nil)
	assert.False(t, isRetryableError(badRequest))

	// Capacity exhaustion is terminal by definition.
	assert.False(t, isRetryableError(noteerrors.NewCapacityError("chat")))
}

func TestRetryAfterDuration(t *testing.T) {
	t.Parallel()

	t.Run("no response uses fallback", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 2*time.Second, retryAfterDuration(nil, 2*time.Second, 10*time.Second))
	})

	t.Run("header wins over fallback", func(t *testing.T) {
		t.Parallel()
		resp := &http.Response{Header: http.Header{"Retry-After": []string{"3"}}}
		assert.Equal(t, 3*time.Second, retryAfterDuration(resp, time.Second, 10*time.Second))
	})

	t.Run("header clamped to max", func(t *testing.T) {
		t.Parallel()
		resp := &http.Response{Header: http.Header{"Retry-After": []string{"120"}}}
		assert.Equal(t, 10*time.Second, retryAfterDuration(resp, time.Second, 10*time.Second))
	})

	t.Run("malformed header ignored", func(t *testing.T) {
		t.Parallel()
		resp := &http.Response{Header: http.Header{"Retry-After": []string{"soon"}}}
		assert.Equal(t, time.Second, retryAfterDuration(resp, time.Second, 10*time.Second))
	})
}

func TestJitterStaysNearBase(t *testing.T) {
	t.Parallel()

	assert.Equal(t, time.Duration(0), jitter(0))

	base := time.Second
	for i := 0; i < 50; i++ {
		v := jitter(base)
		require.GreaterOrEqual(t, v, 800*time.Millisecond)
		require.LessOrEqual(t, v, 1200*time.Millisecond)
	}
}

func TestNewAnthropicRequiresKey(t *testing.T) {
	t.Parallel()

	_, err := NewAnthropic("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key")

	client, err := NewAnthropic("sk-ant-test")
	require.NoError(t, err)
	assert.NotNil(t, client)
}
