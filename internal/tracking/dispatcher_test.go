package tracking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partner-intake/internal/common/logger"
	"partner-intake/internal/models"
)

type recordingSink struct {
	name  string
	err   error
	delay time.Duration

	mu     sync.Mutex
	events []models.TrackingEvent
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Deliver(ctx context.Context, e models.TrackingEvent) error {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.mu.Lock()
	s.events = append(s.events, e)
	s.mu.Unlock()
	return s.err
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func event(t models.EventType) models.TrackingEvent {
	return models.TrackingEvent{
		Type:         t,
		SessionID:    "s-1",
		ContactID:    "c-1",
		MarketType:   models.MarketTypeVanTransport,
		TargetMarket: "uk",
		Step:         2,
		Timestamp:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestDispatcher_DeliversToAllSinks(t *testing.T) {
	ok := &recordingSink{name: "ok"}
	failing := &recordingSink{name: "failing", err: errors.New("down")}
	d := NewDispatcher(logger.NewTestLogger(t), DispatcherOptions{Timeout: time.Second}, ok, failing)

	d.Emit(context.Background(), event(models.EventStepChanged))
	d.Emit(context.Background(), event(models.EventFormSubmitted))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, d.Close(ctx))

	assert.Equal(t, 2, ok.count())
	assert.Equal(t, 2, failing.count())
	assert.Equal(t, models.EventStepChanged, ok.events[0].Type)
}

func TestDispatcher_SlowSinkIsCutOff(t *testing.T) {
	slow := &recordingSink{name: "slow", delay: time.Minute}
	fast := &recordingSink{name: "fast"}
	d := NewDispatcher(logger.NewNoOpLogger(), DispatcherOptions{Timeout: 20 * time.Millisecond}, slow, fast)

	start := time.Now()
	d.Emit(context.Background(), event(models.EventStepChanged))
	assert.Less(t, time.Since(start), 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, d.Close(ctx))
	assert.Equal(t, 0, slow.count())
	assert.Equal(t, 1, fast.count())
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	block := &recordingSink{name: "block", delay: 200 * time.Millisecond}
	d := NewDispatcher(logger.NewNoOpLogger(), DispatcherOptions{Timeout: time.Second, BufferSize: 1}, block)

	for i := 0; i < 20; i++ {
		d.Emit(context.Background(), event(models.EventStepChanged))
	}
	assert.Greater(t, d.Dropped(), int64(0))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, d.Close(ctx))
}

func TestDispatcher_EmitAfterCloseIsIgnored(t *testing.T) {
	sink := &recordingSink{name: "s"}
	d := NewDispatcher(logger.NewNoOpLogger(), DispatcherOptions{}, sink)
	require.NoError(t, d.Close(context.Background()))
	require.NoError(t, d.Close(context.Background()))

	d.Emit(context.Background(), event(models.EventStepChanged))
	assert.Equal(t, 0, sink.count())
}
