package store

import (
	"context"

	"cinema-ticket/models"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
)

func (s *Store) CreateConversation(ctx context.Context, c *models.Conversation) error {
	r, err := s.newRecord(Conversations)
	if err != nil {
		return err
	}
	setConversation(r, c)
	if err := s.save(ctx, r); err != nil {
		return err
	}
	c.ID = r.Id
	return nil
}

func (s *Store) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	r, err := s.find(ctx, Conversations, id)
	if err != nil {
		return nil, err
	}
	c := conversationFromRecord(r)
	return &c, nil
}

func (s *Store) UpdateConversation(ctx context.Context, c *models.Conversation) error {
	r, err := s.find(ctx, Conversations, c.ID)
	if err != nil {
		return err
	}
	setConversation(r, c)
	return s.save(ctx, r)
}

func (s *Store) ListConversations(ctx context.Context, userID string) ([]models.Conversation, error) {
	records, err := s.all(ctx, Conversations, "last_message_at DESC",
		dbx.Or(dbx.HashExp{"customer_id": userID}, dbx.HashExp{"staff_id": userID}))
	if err != nil {
		return nil, err
	}
	list := make([]models.Conversation, len(records))
	for i, r := range records {
		list[i] = conversationFromRecord(r)
	}
	return list, nil
}

func (s *Store) CreateMessage(ctx context.Context, m *models.Message) error {
	r, err := s.newRecord(Messages)
	if err != nil {
		return err
	}
	r.Set("conversation", m.ConversationID)
	r.Set("sender_id", m.SenderID)
	r.Set("body", m.Body)
	setTime(r, "sent_at", m.SentAt)
	if err := s.save(ctx, r); err != nil {
		return err
	}
	m.ID = r.Id
	return nil
}

func (s *Store) ListMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	records, err := s.all(ctx, Messages, "sent_at ASC", dbx.HashExp{"conversation": conversationID})
	if err != nil {
		return nil, err
	}
	messages := make([]models.Message, len(records))
	for i, r := range records {
		messages[i] = models.Message{
			ID:             r.Id,
			ConversationID: r.GetString("conversation"),
			SenderID:       r.GetString("sender_id"),
			Body:           r.GetString("body"),
			SentAt:         getTime(r, "sent_at"),
		}
	}
	return messages, nil
}

func setConversation(r *core.Record, c *models.Conversation) {
	r.Set("customer_id", c.CustomerID)
	r.Set("staff_id", c.StaffID)
	r.Set("subject", c.Subject)
	r.Set("last_message", c.LastMessage)
	setTime(r, "last_message_at", c.LastMessageAt)
	r.Set("unread_customer", c.UnreadCustomer)
	r.Set("unread_staff", c.UnreadStaff)
}

func conversationFromRecord(r *core.Record) models.Conversation {
	return models.Conversation{
		ID:             r.Id,
		CustomerID:     r.GetString("customer_id"),
		StaffID:        r.GetString("staff_id"),
		Subject:        r.GetString("subject"),
		LastMessage:    r.GetString("last_message"),
		LastMessageAt:  getTime(r, "last_message_at"),
		UnreadCustomer: r.GetInt("unread_customer"),
		UnreadStaff:    r.GetInt("unread_staff"),
	}
}
