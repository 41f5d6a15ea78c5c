package cleanup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/flashqueue/internal/testutil/mocks"
)

func TestSweepUsesTTLCutoff(t *testing.T) {
	sessions := new(mocks.MockSessionService)
	reaper := NewReaper(sessions, 30*time.Minute, time.Minute)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	reaper.now = func() time.Time { return now }

	sessions.On("ExpireIdle", mock.Anything, now.Add(-30*time.Minute)).Return(2, nil).Once()

	n, err := reaper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	sessions.AssertExpectations(t)
}

func TestSweepPropagatesErrors(t *testing.T) {
	sessions := new(mocks.MockSessionService)
	reaper := NewReaper(sessions, time.Hour, time.Minute)
	sessions.On("ExpireIdle", mock.Anything, mock.AnythingOfType("time.Time")).Return(0, errors.New("locked"))

	_, err := reaper.Sweep(context.Background())
	assert.Error(t, err)
}

func TestSweepSkipsCancelledContext(t *testing.T) {
	sessions := new(mocks.MockSessionService)
	reaper := NewReaper(sessions, time.Hour, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n, err := reaper.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	sessions.AssertNotCalled(t, "ExpireIdle", mock.Anything, mock.Anything)
}

func TestRunSweepsUntilCancelled(t *testing.T) {
	called := make(chan struct{}, 1)
	sessions := new(mocks.MockSessionService)
	sessions.On("ExpireIdle", mock.Anything, mock.AnythingOfType("time.Time")).Return(0, nil).
		Run(func(mock.Arguments) {
			select {
			case called <- struct{}{}:
			default:
			}
		})
	reaper := NewReaper(sessions, time.Hour, 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- reaper.Run(ctx) }()

	select {
	case <-called:
	case <-time.After(2 * time.Second):
		t.Fatal("no sweep ran")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("reaper did not stop")
	}
}
