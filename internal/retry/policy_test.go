package retry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/eventmetrics/internal/config"
	merrors "git.home.luguber.info/inful/eventmetrics/internal/errors"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFromConfig(t *testing.T) {
	p := FromConfig(config.RetryConfig{})
	assert.Equal(t, DefaultPolicy(), p)

	p = FromConfig(config.RetryConfig{Mode: config.RetryBackoffLinear, Initial: time.Minute, Max: time.Second, MaxRetries: -1})
	assert.Equal(t, config.RetryBackoffLinear, p.Mode)
	assert.Equal(t, time.Second, p.Initial)
	assert.Zero(t, p.MaxRetries)
	require.NoError(t, p.Validate())
}

func TestDelay(t *testing.T) {
	tests := []struct {
		mode    config.RetryBackoffMode
		attempt int
		want    time.Duration
	}{
		{config.RetryBackoffFixed, 3, time.Second},
		{config.RetryBackoffLinear, 3, 3 * time.Second},
		{config.RetryBackoffLinear, 100, 10 * time.Second},
		{config.RetryBackoffExponential, 1, time.Second},
		{config.RetryBackoffExponential, 3, 4 * time.Second},
		{config.RetryBackoffExponential, 64, 10 * time.Second},
		{config.RetryBackoffExponential, 0, 0},
	}
	for _, tt := range tests {
		p := Policy{Mode: tt.mode, Initial: time.Second, Max: 10 * time.Second}
		assert.Equal(t, tt.want, p.Delay(tt.attempt), "%s attempt %d", tt.mode, tt.attempt)
	}
}

func TestValidate(t *testing.T) {
	assert.Error(t, Policy{Max: time.Second}.Validate())
	assert.Error(t, Policy{Initial: time.Second}.Validate())
	assert.Error(t, Policy{Initial: time.Second, Max: time.Second, MaxRetries: -1}.Validate())
}

func fastPolicy(retries int) Policy {
	return Policy{Mode: config.RetryBackoffFixed, Initial: time.Millisecond, Max: time.Millisecond, MaxRetries: retries}
}

func TestDoRetriesTransientErrors(t *testing.T) {
	calls := 0
	err := fastPolicy(3).Do(t.Context(), quietLogger(), "connect", func(context.Context) error {
		calls++
		if calls < 3 {
			return merrors.IngestFailed("nats://x", errors.New("connection refused"))
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoGivesUp(t *testing.T) {
	calls := 0
	transient := merrors.DirectoryUnavailable("sql", errors.New("down"))
	err := fastPolicy(2).Do(t.Context(), quietLogger(), "open", func(context.Context) error {
		calls++
		return transient
	})
	assert.ErrorIs(t, err, transient)
	assert.Equal(t, 3, calls)
}

func TestDoDoesNotRetryPermanentErrors(t *testing.T) {
	calls := 0
	err := fastPolicy(5).Do(t.Context(), quietLogger(), "open", func(context.Context) error {
		calls++
		return merrors.ValidationFailed("dsn", "empty")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	calls := 0
	p := Policy{Mode: config.RetryBackoffFixed, Initial: time.Hour, Max: time.Hour, MaxRetries: 5}
	err := p.Do(ctx, quietLogger(), "connect", func(context.Context) error {
		calls++
		return merrors.IngestFailed("nats://x", errors.New("refused"))
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
