package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errTransient = errors.New("transient")
	errClient    = errors.New("bad request")
)

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	b := New[int](Settings{Name: "test", MaxFailures: 3, OpenTimeout: time.Minute})

	calls := 0
	fail := func() (int, error) {
		calls++
		return 0, errTransient
	}

	for i := 0; i < 3; i++ {
		_, err := b.Execute(fail)
		assert.ErrorIs(t, err, errTransient)
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())

	_, err := b.Execute(fail)
	assert.ErrorIs(t, err, ErrOpen)
	assert.Equal(t, 3, calls, "open breaker must not call fn")
}

func TestBreaker_IgnoresNonFailures(t *testing.T) {
	b := New[string](Settings{
		MaxFailures: 2,
		IsFailure:   func(err error) bool { return errors.Is(err, errTransient) },
	})

	for i := 0; i < 5; i++ {
		_, err := b.Execute(func() (string, error) { return "", errClient })
		require.ErrorIs(t, err, errClient)
	}
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreaker_PassesValue(t *testing.T) {
	b := New[int](Settings{})
	v, err := b.Execute(func() (int, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}
