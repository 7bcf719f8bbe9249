package utils

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// Circuit Breaker Tests

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func succeed(context.Context) error { return nil }

func fail(err error) func(context.Context) error {
	return func(context.Context) error { return err }
}

func newTestBreaker(maxFailures int) (*CircuitBreaker, *fakeClock) {
	clk := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	cb := NewCircuitBreaker("test", maxFailures, 30*time.Second)
	cb.now = clk.now
	return cb, clk
}

func TestCircuitBreaker_NewCircuitBreaker(t *testing.T) {
	cb := NewCircuitBreaker("publisher", 0, time.Minute)

	assert.Equal(t, "publisher", cb.Name())
	assert.Equal(t, uint32(1), cb.maxFailures)
	assert.Equal(t, time.Minute, cb.cooldown)
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_ExecuteSuccessAndFailure(t *testing.T) {
	cb, _ := newTestBreaker(3)
	ctx := context.Background()

	assert.NoError(t, cb.Execute(ctx, succeed))

	expectedError := errors.New("test error")
	err := cb.Execute(ctx, fail(expectedError))
	assert.Equal(t, expectedError, err)

	counts := cb.Counts()
	assert.Equal(t, uint32(2), counts.Requests)
	assert.Equal(t, uint32(1), counts.TotalSuccesses)
	assert.Equal(t, uint32(1), counts.TotalFailures)
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	cb, _ := newTestBreaker(3)
	ctx := context.Background()
	boom := errors.New("boom")

	// A success in between resets the streak.
	require.Error(t, cb.Execute(ctx, fail(boom)))
	require.Error(t, cb.Execute(ctx, fail(boom)))
	require.NoError(t, cb.Execute(ctx, succeed))
	require.Error(t, cb.Execute(ctx, fail(boom)))
	require.Error(t, cb.Execute(ctx, fail(boom)))
	assert.Equal(t, StateClosed, cb.State())

	require.Error(t, cb.Execute(ctx, fail(boom)))
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Execute(ctx, func(context.Context) error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestCircuitBreaker_HalfOpenTransitions(t *testing.T) {
	tests := []struct {
		name     string
		probe    func(context.Context) error
		expected State
	}{
		{"success closes", succeed, StateClosed},
		{"failure reopens", fail(errors.New("still down")), StateOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb, clk := newTestBreaker(1)
			ctx := context.Background()

			require.Error(t, cb.Execute(ctx, fail(errors.New("down"))))
			require.Equal(t, StateOpen, cb.State())

			clk.advance(29 * time.Second)
			assert.Equal(t, StateOpen, cb.State())

			clk.advance(time.Second)
			assert.Equal(t, StateHalfOpen, cb.State())

			_ = cb.Execute(ctx, tt.probe)
			assert.Equal(t, tt.expected, cb.State())
		})
	}
}

func TestCircuitBreaker_PanicCountsAsFailure(t *testing.T) {
	cb, _ := newTestBreaker(1)

	assert.Panics(t, func() {
		_ = cb.Execute(context.Background(), func(context.Context) error { panic("test panic") })
	})
	assert.Equal(t, StateOpen, cb.State())
	assert.Equal(t, uint32(1), cb.Counts().TotalFailures)
}

func TestCircuitBreaker_ConcurrentAccess(t *testing.T) {
	cb := NewCircuitBreaker("concurrent", 1000, time.Minute)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_ = cb.Execute(ctx, succeed)
			} else {
				_ = cb.Execute(ctx, fail(errors.New("odd")))
			}
		}(i)
	}
	wg.Wait()

	counts := cb.Counts()
	assert.Equal(t, uint32(50), counts.Requests)
	assert.Equal(t, uint32(25), counts.TotalSuccesses)
	assert.Equal(t, uint32(25), counts.TotalFailures)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "unknown", State(9).String())
}

// Redis Client Tests

func TestRedisHealthCheck_Success(t *testing.T) {
	db, mock := redismock.NewClientMock()

	mock.ExpectPing().SetVal("PONG")

	err := RedisHealthCheck(db)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisHealthCheck_Failure(t *testing.T) {
	db, mock := redismock.NewClientMock()

	expectedError := errors.New("connection failed")
	mock.ExpectPing().SetErr(expectedError)

	err := RedisHealthCheck(db)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "redis health check failed")
	assert.Contains(t, err.Error(), "connection failed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Password Tests

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("admin123", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "admin123", hash)

	assert.True(t, VerifyPassword(hash, "admin123"))
	assert.False(t, VerifyPassword(hash, "admin124"))
	assert.False(t, VerifyPassword("not-a-hash", "admin123"))
}

// ID Tests

func TestNewID(t *testing.T) {
	pattern := regexp.MustCompile(`^USR-[0-9A-F]{8}$`)

	first := NewID("USR")
	second := NewID("USR")

	assert.Regexp(t, pattern, first)
	assert.Regexp(t, pattern, second)
	assert.NotEqual(t, first, second)
}
