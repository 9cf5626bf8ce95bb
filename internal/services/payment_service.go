package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cinema-ticket/internal/status"
	"cinema-ticket/models"

	"github.com/google/uuid"
	pubnub "github.com/pubnub/go/v7"
	"github.com/redis/go-redis/v9"
)

// PaymentService keeps payment sessions in Redis. A session expires with the payment window.
type PaymentService struct {
	Redis   redis.Cmdable
	Timeout time.Duration

	now   func() time.Time
	newID func() string
}

func NewPaymentService(redisClient redis.Cmdable, timeout time.Duration) *PaymentService {
	return &PaymentService{
		Redis:   redisClient,
		Timeout: timeout,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

func paymentKey(paymentID string) string {
	return fmt.Sprintf("payment:%s", paymentID)
}

func (s *PaymentService) CreatePaymentSession(ctx context.Context, b *models.Booking) (*models.Payment, error) {
	now := s.now().UTC()
	p := &models.Payment{
		ID:         s.newID(),
		BookingID:  b.ID,
		UserID:     b.HolderID,
		ShowtimeID: b.ShowtimeID,
		Seats:      b.SeatIDs(),
		Amount:     b.Total,
		Status:     models.PaymentPending,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.Timeout),
	}

	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	if err := s.Redis.Set(ctx, paymentKey(p.ID), data, s.Timeout).Err(); err != nil {
		slog.Error("Failed to create payment session", "error", err, "booking_id", b.ID)
		return nil, err
	}
	return p, nil
}

func (s *PaymentService) GetPayment(ctx context.Context, paymentID string) (*models.Payment, error) {
	data, err := s.Redis.Get(ctx, paymentKey(paymentID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, status.ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}

	var p models.Payment
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode payment %s: %w", paymentID, err)
	}
	return &p, nil
}

// settleScript replaces the session only while its stored status is still ARGV[1].
// It returns -1 when the session is gone and 0 when another caller settled it first.
var settleScript = redis.NewScript(`
local current = redis.call("GET", KEYS[1])
if not current then
	return -1
end
if cjson.decode(current)["status"] ~= ARGV[1] then
	return 0
end
redis.call("SET", KEYS[1], ARGV[2], "KEEPTTL")
return 1`)

// Settle moves a pending session to st without touching its expiry. Only one caller can
// settle a session; the others get ErrPaymentCompleted.
func (s *PaymentService) Settle(ctx context.Context, p *models.Payment, st models.PaymentStatus) error {
	if p.Status != models.PaymentPending {
		return status.ErrPaymentCompleted
	}

	next := *p
	next.Status = st
	if st == models.PaymentCompleted {
		now := s.now().UTC()
		next.CompletedAt = &now
	}

	data, err := json.Marshal(&next)
	if err != nil {
		return err
	}
	res, err := settleScript.Run(ctx, s.Redis, []string{paymentKey(p.ID)}, string(models.PaymentPending), data).Int64()
	if err != nil {
		return err
	}
	switch res {
	case -1:
		return status.ErrPaymentNotFound
	case 0:
		return status.ErrPaymentCompleted
	}
	*p = next
	return nil
}

// PaymentNotification is what the payment gateway publishes once a payment settles.
type PaymentNotification struct {
	PaymentID string `json:"payment_id"`
	Status    string `json:"status"` // success or failed
}

func (n PaymentNotification) Succeeded() bool {
	return n.Status == "success"
}

func parsePaymentNotification(message any) (PaymentNotification, error) {
	var n PaymentNotification

	var data []byte
	switch m := message.(type) {
	case string:
		data = []byte(m)
	default:
		b, err := json.Marshal(m)
		if err != nil {
			return n, err
		}
		data = b
	}

	if err := json.Unmarshal(data, &n); err != nil {
		return n, err
	}
	if n.PaymentID == "" || (n.Status != "success" && n.Status != "failed") {
		return n, fmt.Errorf("%w: payment notification %s", status.ErrInvalidInput, string(data))
	}
	return n, nil
}

// ListenPaymentNotifications subscribes to the gateway channel on PubNub and hands every
// settled payment to handle until ctx is done.
func ListenPaymentNotifications(ctx context.Context, pn *pubnub.PubNub, channel string, handle func(context.Context, PaymentNotification) error) {
	listener := pubnub.NewListener()
	pn.AddListener(listener)
	pn.Subscribe().
		Channels([]string{channel}).
		Execute()

	defer func() {
		pn.Unsubscribe().Channels([]string{channel}).Execute()
		pn.RemoveListener(listener)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case st := <-listener.Status:
			if st != nil && st.Error {
				slog.Warn("PubNub status error", "channel", channel, "category", st.Category)
			}
		case msg := <-listener.Message:
			if msg == nil {
				continue
			}
			n, err := parsePaymentNotification(msg.Message)
			if err != nil {
				slog.Error("Error parsing payment notification", "error", err)
				continue
			}
			if err := handle(ctx, n); err != nil {
				slog.Error("Failed to settle payment", "error", err, "payment_id", n.PaymentID)
			}
		}
	}
}
