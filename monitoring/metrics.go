package monitoring

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var (
	seatLocks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinema_seat_lock_operations_total",
			Help: "Seat lock attempts by outcome",
		},
		[]string{"operation", "result"},
	)

	seatsHeld = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cinema_seats_held",
			Help: "Seats currently locked or sold in Redis",
		},
		[]string{"state"},
	)

	bookings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinema_bookings_total",
			Help: "Booking state changes by sales channel",
		},
		[]string{"channel", "status"},
	)

	revenue = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinema_revenue_total",
			Help: "Revenue of confirmed bookings",
		},
		[]string{"channel"},
	)

	couponRedemptions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinema_coupon_redemptions_total",
			Help: "Coupon redemption attempts by outcome",
		},
		[]string{"result"},
	)

	notifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinema_notifications_total",
			Help: "Realtime notifications by category and outcome",
		},
		[]string{"category", "result"},
	)

	eventsHandled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinema_events_handled_total",
			Help: "Domain events handled by handler and outcome",
		},
		[]string{"handler", "result"},
	)

	eventDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinema_event_handling_duration_seconds",
			Help:    "Duration of domain event handlers",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"handler"},
	)

	breakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cinema_circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 half open, 2 open)",
		},
		[]string{"name"},
	)

	throttled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinema_requests_rejected_total",
			Help: "Requests rejected by the security middleware",
		},
		[]string{"reason"},
	)
)

func TrackSeatLock(operation, result string) {
	seatLocks.WithLabelValues(operation, result).Inc()
}

func TrackBooking(channel, status string) {
	bookings.WithLabelValues(channel, status).Inc()
}

func TrackRevenue(channel string, amount float64) {
	if amount > 0 {
		revenue.WithLabelValues(channel).Add(amount)
	}
}

func TrackCouponRedemption(result string) {
	couponRedemptions.WithLabelValues(result).Inc()
}

func TrackNotification(category, result string) {
	notifications.WithLabelValues(category, result).Inc()
}

func TrackEvent(handler string, err error, d time.Duration) {
	result := "success"
	if err != nil {
		result = "error"
	}
	eventsHandled.WithLabelValues(handler, result).Inc()
	eventDuration.WithLabelValues(handler).Observe(d.Seconds())
}

func TrackBreakerState(name string, state int) {
	breakerState.WithLabelValues(name).Set(float64(state))
}

func TrackRejected(reason string) {
	throttled.WithLabelValues(reason).Inc()
}

// Monitor periodically samples seat keys in Redis.
type Monitor struct {
	redis    redis.UniversalClient
	interval time.Duration
}

func NewMonitor(redisClient redis.UniversalClient, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Monitor{redis: redisClient, interval: interval}
}

// Run samples until ctx is done.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.CollectSeatMetrics(ctx); err != nil {
				slog.Warn("Failed to collect seat metrics", "error", err)
			}
		}
	}
}

func (m *Monitor) CollectSeatMetrics(ctx context.Context) error {
	var (
		cursor uint64
		locked int
		sold   int
	)
	for {
		keys, next, err := m.redis.Scan(ctx, cursor, "seat:*", 500).Result()
		if err != nil {
			return err
		}

		if len(keys) > 0 {
			values, err := m.redis.MGet(ctx, keys...).Result()
			if err != nil {
				return err
			}
			for _, v := range values {
				s, ok := v.(string)
				if !ok {
					continue
				}
				switch {
				case strings.HasPrefix(s, "sold:"):
					sold++
				case strings.HasPrefix(s, "lock:"):
					locked++
				}
			}
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	seatsHeld.WithLabelValues("locked").Set(float64(locked))
	seatsHeld.WithLabelValues("sold").Set(float64(sold))
	return nil
}
