package monitoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectSeatMetrics(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ctx := context.Background()

	mock.ExpectScan(0, "seat:*", 500).SetVal([]string{"seat:s1:A1", "seat:s1:A2"}, 7)
	mock.ExpectMGet("seat:s1:A1", "seat:s1:A2").SetVal([]any{"lock:u1", "sold:u2"})
	mock.ExpectScan(7, "seat:*", 500).SetVal([]string{"seat:s2:B4"}, 0)
	mock.ExpectMGet("seat:s2:B4").SetVal([]any{"lock:u3"})

	m := NewMonitor(db, time.Minute)
	require.NoError(t, m.CollectSeatMetrics(ctx))

	assert.Equal(t, 2.0, testutil.ToFloat64(seatsHeld.WithLabelValues("locked")))
	assert.Equal(t, 1.0, testutil.ToFloat64(seatsHeld.WithLabelValues("sold")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCollectSeatMetrics_ScanError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.ExpectScan(0, "seat:*", 500).SetErr(errors.New("redis down"))

	err := NewMonitor(db, 0).CollectSeatMetrics(context.Background())
	assert.EqualError(t, err, "redis down")
}

func TestTrackers(t *testing.T) {
	before := testutil.ToFloat64(bookings.WithLabelValues("counter", "confirmed"))
	TrackBooking("counter", "confirmed")
	assert.Equal(t, before+1, testutil.ToFloat64(bookings.WithLabelValues("counter", "confirmed")))

	rev := testutil.ToFloat64(revenue.WithLabelValues("online"))
	TrackRevenue("online", 27.5)
	TrackRevenue("online", 0)
	assert.Equal(t, rev+27.5, testutil.ToFloat64(revenue.WithLabelValues("online")))

	failed := testutil.ToFloat64(eventsHandled.WithLabelValues("notify", "error"))
	TrackEvent("notify", errors.New("boom"), time.Millisecond)
	assert.Equal(t, failed+1, testutil.ToFloat64(eventsHandled.WithLabelValues("notify", "error")))

	TrackBreakerState("pubnub", 2)
	assert.Equal(t, 2.0, testutil.ToFloat64(breakerState.WithLabelValues("pubnub")))
}

func TestMonitorRunStopsWithContext(t *testing.T) {
	db, _ := redismock.NewClientMock()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		NewMonitor(db, time.Hour).Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop")
	}
}
