// internal/signals/signals_test.go
package signals

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"survey-workers/internal/common/logger"
	"survey-workers/internal/models"
)

func newTestBus(t *testing.T) *Bus {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewBus(client, logger.NewTestLogger(t))
}

func TestPublishSubscribe_RoundTrip(t *testing.T) {
	bus := newTestBus(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan models.SummaryCreated, 1)
	go func() {
		_ = bus.SubscribeSummaryCreated(ctx, func(_ context.Context, event models.SummaryCreated) {
			received <- event
		})
	}()

	// Give the subscriber a moment to attach.
	time.Sleep(50 * time.Millisecond)

	event := models.SummaryCreated{SummaryID: 3, SurveyID: 7, CreatedAt: time.Now().UTC()}
	require.NoError(t, bus.PublishSummaryCreated(ctx, event))

	select {
	case got := <-received:
		assert.Equal(t, int64(3), got.SummaryID)
		assert.Equal(t, int64(7), got.SurveyID)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for summary-created signal")
	}
}

func TestSubscribe_StopsOnContextCancel(t *testing.T) {
	bus := newTestBus(t)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- bus.SubscribeSummaryCreated(ctx, func(context.Context, models.SummaryCreated) {})
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber did not stop after cancel")
	}
}

func TestSubscribe_SkipsUndecodablePayload(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	bus := NewBus(client, logger.NewNoOpLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan models.SummaryCreated, 1)
	go func() {
		_ = bus.SubscribeSummaryCreated(ctx, func(_ context.Context, event models.SummaryCreated) {
			received <- event
		})
	}()

	time.Sleep(50 * time.Millisecond)

	require.NoError(t, client.Publish(ctx, SummaryCreatedChannel, "not json").Err())
	require.NoError(t, bus.PublishSummaryCreated(ctx, models.SummaryCreated{SummaryID: 9, SurveyID: 4}))

	select {
	case got := <-received:
		assert.Equal(t, int64(9), got.SummaryID)
	case <-time.After(2 * time.Second):
		t.Fatal("valid signal was not delivered after bad payload")
	}
}
