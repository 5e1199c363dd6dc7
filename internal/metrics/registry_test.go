package metrics

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateCounterIsIdempotentUnderConcurrency(t *testing.T) {
	reg := NewRegistry()
	const workers = 64

	got := make([]*Counter, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i] = reg.GetOrCreateCounter("keycloak_user_event_LOGOUT", GenericUserHelp)
			assert.NoError(t, got[i].Inc(NewTags(TagRealm, "r", TagClientID, "c")))
		}()
	}
	wg.Wait()

	for _, c := range got {
		assert.Same(t, got[0], c)
	}
	assert.Equal(t, []string{"keycloak_user_event_LOGOUT"}, reg.CounterNames())

	v, ok := reg.Value("keycloak_user_event_LOGOUT", NewTags(TagRealm, "r", TagClientID, "c"))
	require.True(t, ok)
	assert.Equal(t, float64(workers), v)

	n, err := testutil.GatherAndCount(reg, "keycloak_user_event_LOGOUT")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestIncrementCounterCreatesUnknownNamesWithUserHelp(t *testing.T) {
	reg := NewRegistry()
	_, ok := reg.Lookup("keycloak_user_event_NEW_TYPE")
	require.False(t, ok)

	require.NoError(t, reg.IncrementCounter("keycloak_user_event_NEW_TYPE", NewTags(TagRealm, "")))

	c, ok := reg.Lookup("keycloak_user_event_NEW_TYPE")
	require.True(t, ok)
	assert.Equal(t, GenericUserHelp, c.Help())
	v, ok := reg.Value("keycloak_user_event_NEW_TYPE", NewTags(TagRealm, ""))
	require.True(t, ok)
	assert.Equal(t, 1.0, v)
}

func TestCounterIsMonotonic(t *testing.T) {
	reg := NewRegistry()
	tags := NewTags(TagRealm, "r")
	var last float64
	for range 5 {
		require.NoError(t, reg.IncrementCounter("keycloak_user_event_LOGOUT", tags))
		v, ok := reg.Value("keycloak_user_event_LOGOUT", tags)
		require.True(t, ok)
		assert.Greater(t, v, last)
		last = v
	}
	assert.Equal(t, 5.0, last)
}

func TestIncrementCounterRejectsTagKeyDrift(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.IncrementCounter("m", NewTags("a", "1")))

	err := reg.IncrementCounter("m", NewTags("b", "2"))
	require.ErrorIs(t, err, ErrLabelMismatch)

	v, ok := reg.Value("m", NewTags("a", "1"))
	require.True(t, ok)
	assert.Equal(t, 1.0, v)
}

func TestFirstHelpWins(t *testing.T) {
	reg := NewRegistry()
	first := reg.GetOrCreateCounter("m", "first")
	second := reg.GetOrCreateCounter("m", "second")
	assert.Same(t, first, second)
	assert.Equal(t, "first", second.Help())
}

func TestRegisterGaugeReplacesCapture(t *testing.T) {
	reg := NewRegistry()
	tags := NewTags(TagRealm, "r", TagClientID, "c")

	require.NoError(t, reg.RegisterGauge("g", "help", tags, func() float64 { return 1 }))
	require.NoError(t, reg.RegisterGauge("g", "help", tags, func() float64 { return 7 }))

	n, err := testutil.GatherAndCount(reg, "g")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	v, ok := reg.Value("g", tags)
	require.True(t, ok)
	assert.Equal(t, 7.0, v)

	require.NoError(t, reg.RegisterGauge("g", "help", NewTags(TagRealm, "r", TagClientID, "other"), func() float64 { return 2 }))
	n, err = testutil.GatherAndCount(reg, "g")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"g"}, reg.GaugeNames())
}

func TestRegisterGaugeEvaluatesAtReadTime(t *testing.T) {
	reg := NewRegistry()
	live := 0.0
	require.NoError(t, reg.RegisterGauge("g", "help", NewTags(), func() float64 { return live }))

	live = 3
	v, ok := reg.Value("g", NewTags())
	require.True(t, ok)
	assert.Equal(t, 3.0, v)

	live = 5
	v, _ = reg.Value("g", NewTags())
	assert.Equal(t, 5.0, v)
}

func TestRegisterGaugeValidation(t *testing.T) {
	reg := NewRegistry()
	require.Error(t, reg.RegisterGauge("g", "help", NewTags(), nil))

	require.NoError(t, reg.RegisterGauge("g", "help", NewTags("a", "1"), func() float64 { return 0 }))
	err := reg.RegisterGauge("g", "help", NewTags("b", "1"), func() float64 { return 0 })
	require.ErrorIs(t, err, ErrLabelMismatch)
}

func TestRuntimeCollectors(t *testing.T) {
	reg := NewRegistry(WithRuntimeCollectors())
	n, err := testutil.GatherAndCount(reg, "go_goroutines")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
