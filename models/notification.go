package models

type NotificationChannel string

const (
	NotifyEmail NotificationChannel = "email"
	NotifyPush  NotificationChannel = "push"
	NotifySMS   NotificationChannel = "sms"
)

type NotificationCategory string

const (
	CategoryBookingUpdates NotificationCategory = "booking_updates"
	CategoryPromotions     NotificationCategory = "promotions"
	CategoryMessages       NotificationCategory = "messages"
	CategoryReminders      NotificationCategory = "reminders"
)

var NotificationCategories = []NotificationCategory{
	CategoryBookingUpdates,
	CategoryPromotions,
	CategoryMessages,
	CategoryReminders,
}

type NotificationPreferences struct {
	ID         string                        `json:"id,omitempty"`
	UserID     string                        `json:"user_id"`
	Email      bool                          `json:"email"`
	Push       bool                          `json:"push"`
	SMS        bool                          `json:"sms"`
	Categories map[NotificationCategory]bool `json:"categories"`
}

func DefaultNotificationPreferences(userID string) *NotificationPreferences {
	categories := make(map[NotificationCategory]bool, len(NotificationCategories))
	for _, c := range NotificationCategories {
		categories[c] = true
	}
	return &NotificationPreferences{
		UserID:     userID,
		Email:      true,
		Push:       true,
		SMS:        false,
		Categories: categories,
	}
}

// Allows reports whether a notification of the category may be sent over the channel.
// Categories missing from the map are treated as enabled.
func (p *NotificationPreferences) Allows(category NotificationCategory, channel NotificationChannel) bool {
	if enabled, ok := p.Categories[category]; ok && !enabled {
		return false
	}
	switch channel {
	case NotifyEmail:
		return p.Email
	case NotifyPush:
		return p.Push
	case NotifySMS:
		return p.SMS
	}
	return false
}
