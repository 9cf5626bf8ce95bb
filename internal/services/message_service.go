package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"cinema-ticket/internal/events"
	"cinema-ticket/internal/status"
	"cinema-ticket/models"
)

const (
	maxMessageLength = 2000
	previewLength    = 80
)

type MessageService struct {
	Store  MessageStore
	Events EventPublisher

	now func() time.Time
}

func NewMessageService(store MessageStore, publisher EventPublisher) *MessageService {
	return &MessageService{Store: store, Events: publisher, now: time.Now}
}

type StartConversation struct {
	// ParticipantID is the staff member a customer writes to, or the customer a staff member writes to.
	ParticipantID string `json:"participant_id"`
	Subject       string `json:"subject"`
	Body          string `json:"body"`
}

func (s *MessageService) Start(ctx context.Context, actor Actor, req StartConversation) (*models.Conversation, *models.Message, error) {
	subject := strings.TrimSpace(req.Subject)
	if subject == "" || req.ParticipantID == "" || req.ParticipantID == actor.ID {
		return nil, nil, fmt.Errorf("%w: participant and subject are required", status.ErrInvalidInput)
	}
	if _, err := messageBody(req.Body); err != nil {
		return nil, nil, err
	}

	c := &models.Conversation{Subject: subject}
	if actor.Role.IsStaff() {
		c.StaffID = actor.ID
		c.CustomerID = req.ParticipantID
	} else {
		c.CustomerID = actor.ID
		c.StaffID = req.ParticipantID
	}
	c.LastMessageAt = s.now().UTC()

	if err := s.Store.CreateConversation(ctx, c); err != nil {
		return nil, nil, err
	}

	m, err := s.Send(ctx, actor, c.ID, req.Body)
	if err != nil {
		return nil, nil, err
	}
	c, err = s.Store.GetConversation(ctx, c.ID)
	if err != nil {
		return nil, nil, err
	}
	return c, m, nil
}

// Send appends a message and bumps the recipient's unread count.
func (s *MessageService) Send(ctx context.Context, actor Actor, conversationID, body string) (*models.Message, error) {
	body, err := messageBody(body)
	if err != nil {
		return nil, err
	}

	c, err := s.participantConversation(ctx, actor, conversationID)
	if err != nil {
		return nil, err
	}

	m := &models.Message{
		ConversationID: c.ID,
		SenderID:       actor.ID,
		Body:           body,
		SentAt:         s.now().UTC(),
	}
	if err := s.Store.CreateMessage(ctx, m); err != nil {
		return nil, err
	}

	c.LastMessage = preview(body)
	c.LastMessageAt = m.SentAt
	if c.CustomerID == actor.ID {
		c.UnreadStaff++
	} else {
		c.UnreadCustomer++
	}
	if err := s.Store.UpdateConversation(ctx, c); err != nil {
		return nil, err
	}

	if s.Events != nil {
		err := s.Events.Publish(ctx, &events.MessageSent{
			Header:         events.NewHeader(),
			ConversationID: c.ID,
			MessageID:      m.ID,
			SenderID:       actor.ID,
			RecipientID:    c.Counterpart(actor.ID),
			Preview:        c.LastMessage,
			SentAt:         m.SentAt,
		})
		if err != nil {
			slog.Error("Failed to publish event", "error", err, "conversation_id", c.ID)
		}
	}
	return m, nil
}

// List returns the actor's conversations, most recent first.
func (s *MessageService) List(ctx context.Context, actor Actor) ([]models.Conversation, error) {
	list, err := s.Store.ListConversations(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(list, func(a, b models.Conversation) int {
		return b.LastMessageAt.Compare(a.LastMessageAt)
	})
	return list, nil
}

// Messages returns the conversation's messages in the order they were sent.
func (s *MessageService) Messages(ctx context.Context, actor Actor, conversationID string) ([]models.Message, error) {
	if _, err := s.participantConversation(ctx, actor, conversationID); err != nil {
		return nil, err
	}
	list, err := s.Store.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(list, func(a, b models.Message) int {
		return a.SentAt.Compare(b.SentAt)
	})
	return list, nil
}

func (s *MessageService) MarkRead(ctx context.Context, actor Actor, conversationID string) (*models.Conversation, error) {
	c, err := s.participantConversation(ctx, actor, conversationID)
	if err != nil {
		return nil, err
	}
	if c.Unread(actor.ID) == 0 {
		return c, nil
	}

	if c.CustomerID == actor.ID {
		c.UnreadCustomer = 0
	} else {
		c.UnreadStaff = 0
	}
	if err := s.Store.UpdateConversation(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// UnreadTotal sums the actor's unread messages across conversations.
func (s *MessageService) UnreadTotal(ctx context.Context, actor Actor) (int, error) {
	list, err := s.Store.ListConversations(ctx, actor.ID)
	if err != nil {
		return 0, err
	}
	total := 0
	for i := range list {
		total += list[i].Unread(actor.ID)
	}
	return total, nil
}

func (s *MessageService) participantConversation(ctx context.Context, actor Actor, id string) (*models.Conversation, error) {
	c, err := s.Store.GetConversation(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.HasParticipant(actor.ID) {
		return nil, status.ErrNotParticipant
	}
	return c, nil
}

func messageBody(body string) (string, error) {
	body = strings.TrimSpace(body)
	switch {
	case body == "":
		return "", fmt.Errorf("%w: message body is empty", status.ErrInvalidInput)
	case utf8.RuneCountInString(body) > maxMessageLength:
		return "", fmt.Errorf("%w: message longer than %d characters", status.ErrInvalidInput, maxMessageLength)
	}
	return body, nil
}

func preview(body string) string {
	r := []rune(body)
	if len(r) <= previewLength {
		return body
	}
	return string(r[:previewLength-1]) + "…"
}
