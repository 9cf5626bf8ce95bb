package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cinema-ticket/internal/events"
	"cinema-ticket/internal/status"
	"cinema-ticket/models"
	"cinema-ticket/monitoring"
	"cinema-ticket/utils"

	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	pubnub "github.com/pubnub/go/v7"
)

const PromotionsChannel = "promotions"

func UserChannel(userID string) string {
	return fmt.Sprintf("user-%s", userID)
}

type PreferenceService struct {
	Store PreferenceStore
}

func NewPreferenceService(store PreferenceStore) *PreferenceService {
	return &PreferenceService{Store: store}
}

// Get returns the user's preferences, falling back to the defaults when none are stored.
func (s *PreferenceService) Get(ctx context.Context, userID string) (*models.NotificationPreferences, error) {
	p, err := s.Store.GetPreferences(ctx, userID)
	if errors.Is(err, status.ErrNotFound) {
		return models.DefaultNotificationPreferences(userID), nil
	}
	if err != nil {
		return nil, err
	}
	if p.Categories == nil {
		p.Categories = map[models.NotificationCategory]bool{}
	}
	return p, nil
}

func (s *PreferenceService) Update(ctx context.Context, userID string, in models.NotificationPreferences) (*models.NotificationPreferences, error) {
	current, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	for c := range in.Categories {
		if !isKnownCategory(c) {
			return nil, fmt.Errorf("%w: unknown category %q", status.ErrInvalidInput, c)
		}
	}

	current.Email = in.Email
	current.Push = in.Push
	current.SMS = in.SMS
	for c, enabled := range in.Categories {
		current.Categories[c] = enabled
	}

	if err := s.Store.SavePreferences(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}

func isKnownCategory(c models.NotificationCategory) bool {
	for _, known := range models.NotificationCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Pusher delivers a realtime payload to a channel.
type Pusher interface {
	Push(ctx context.Context, channel string, payload map[string]any) error
}

// PubNubPusher publishes to PubNub through a circuit breaker.
type PubNubPusher struct {
	PubNub  *pubnub.PubNub
	Breaker *utils.CircuitBreaker
}

func NewPubNubPusher(pn *pubnub.PubNub) *PubNubPusher {
	return &PubNubPusher{
		PubNub: pn,
		Breaker: utils.NewCircuitBreaker("pubnub", utils.BreakerSettings{
			OnStateChange: func(name string, from, to utils.State) {
				slog.Warn("Circuit breaker state changed", "name", name, "from", from, "to", to)
				monitoring.TrackBreakerState(name, int(to))
			},
		}),
	}
}

func (p *PubNubPusher) Push(ctx context.Context, channel string, payload map[string]any) error {
	return p.Breaker.Execute(ctx, func(ctx context.Context) error {
		_, st, err := p.PubNub.Publish().
			Channel(channel).
			Message(payload).
			Execute()
		if err != nil {
			return err
		}
		if st.Error != nil {
			return st.Error
		}
		return nil
	})
}

// Notifier turns domain events into realtime notifications, honouring user preferences.
type Notifier struct {
	Preferences *PreferenceService
	Pusher      Pusher
}

func NewNotifier(prefs *PreferenceService, pusher Pusher) *Notifier {
	return &Notifier{Preferences: prefs, Pusher: pusher}
}

// Handlers returns the event handlers to register on the router.
func (n *Notifier) Handlers() []cqrs.EventHandler {
	return []cqrs.EventHandler{
		cqrs.NewEventHandler("notifier.OnBookingConfirmed", n.OnBookingConfirmed),
		cqrs.NewEventHandler("notifier.OnBookingCancelled", n.OnBookingCancelled),
		cqrs.NewEventHandler("notifier.OnMessageSent", n.OnMessageSent),
		cqrs.NewEventHandler("notifier.OnPromotionPublished", n.OnPromotionPublished),
		cqrs.NewEventHandler("notifier.OnSupportTicketUpdated", n.OnSupportTicketUpdated),
	}
}

func (n *Notifier) OnBookingConfirmed(ctx context.Context, e *events.BookingConfirmed) error {
	return n.notify(ctx, e.CustomerID, models.CategoryBookingUpdates, map[string]any{
		"type":       "booking_confirmed",
		"booking_id": e.BookingID,
		"reference":  e.Reference,
		"movie":      e.MovieTitle,
		"seats":      e.Seats,
		"total":      e.Total.StringFixed(2),
	})
}

func (n *Notifier) OnBookingCancelled(ctx context.Context, e *events.BookingCancelled) error {
	return n.notify(ctx, e.CustomerID, models.CategoryBookingUpdates, map[string]any{
		"type":       "booking_cancelled",
		"booking_id": e.BookingID,
		"reference":  e.Reference,
		"seats":      e.Seats,
		"reason":     e.Reason,
	})
}

func (n *Notifier) OnMessageSent(ctx context.Context, e *events.MessageSent) error {
	return n.notify(ctx, e.RecipientID, models.CategoryMessages, map[string]any{
		"type":            "message",
		"conversation_id": e.ConversationID,
		"message_id":      e.MessageID,
		"sender_id":       e.SenderID,
		"preview":         e.Preview,
	})
}

func (n *Notifier) OnSupportTicketUpdated(ctx context.Context, e *events.SupportTicketUpdated) error {
	return n.notify(ctx, e.CustomerID, models.CategoryMessages, map[string]any{
		"type":      "support_ticket",
		"ticket_id": e.TicketID,
		"subject":   e.Subject,
		"status":    e.Status,
	})
}

// OnPromotionPublished broadcasts to the shared promotions channel; clients filter by their own preferences.
func (n *Notifier) OnPromotionPublished(ctx context.Context, e *events.PromotionPublished) error {
	n.push(ctx, PromotionsChannel, models.CategoryPromotions, map[string]any{
		"type":         "promotion",
		"promotion_id": e.PromotionID,
		"title":        e.Title,
		"coupon_code":  e.CouponCode,
		"ends_at":      e.EndsAt,
	})
	return nil
}

// notify pushes to the user's channel when their preferences allow it.
// Delivery failures are logged and dropped so the event is not redelivered forever.
func (n *Notifier) notify(ctx context.Context, userID string, category models.NotificationCategory, payload map[string]any) error {
	if userID == "" {
		return nil
	}

	prefs, err := n.Preferences.Get(ctx, userID)
	if err != nil {
		return err
	}
	if !prefs.Allows(category, models.NotifyPush) {
		monitoring.TrackNotification(string(category), "muted")
		return nil
	}

	n.push(ctx, UserChannel(userID), category, payload)
	return nil
}

func (n *Notifier) push(ctx context.Context, channel string, category models.NotificationCategory, payload map[string]any) {
	if err := n.Pusher.Push(ctx, channel, payload); err != nil {
		monitoring.TrackNotification(string(category), "failed")
		slog.Warn("Failed to push notification", "error", err, "channel", channel, "category", category)
		return
	}
	monitoring.TrackNotification(string(category), "sent")
}
