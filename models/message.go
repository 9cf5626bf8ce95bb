package models

import "time"

type Conversation struct {
	ID             string    `json:"id"`
	CustomerID     string    `json:"customer_id"`
	StaffID        string    `json:"staff_id"`
	Subject        string    `json:"subject"`
	LastMessage    string    `json:"last_message"`
	LastMessageAt  time.Time `json:"last_message_at"`
	UnreadCustomer int       `json:"unread_customer"`
	UnreadStaff    int       `json:"unread_staff"`
}

func (c *Conversation) HasParticipant(userID string) bool {
	return userID != "" && (c.CustomerID == userID || c.StaffID == userID)
}

// Counterpart returns the other participant of the conversation.
func (c *Conversation) Counterpart(userID string) string {
	if c.CustomerID == userID {
		return c.StaffID
	}
	return c.CustomerID
}

// Unread returns the unread count for the given participant.
func (c *Conversation) Unread(userID string) int {
	if c.CustomerID == userID {
		return c.UnreadCustomer
	}
	return c.UnreadStaff
}

type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	Body           string    `json:"body"`
	SentAt         time.Time `json:"sent_at"`
}
