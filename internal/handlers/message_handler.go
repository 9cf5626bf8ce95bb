package handlers

import (
	"net/http"

	"cinema-ticket/internal/services"

	"github.com/pocketbase/pocketbase/core"
)

type MessageHandler struct {
	messages *services.MessageService
}

func NewMessageHandler(messages *services.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

func (h *MessageHandler) ListConversations(e *core.RequestEvent) error {
	ctx := e.Request.Context()
	actor := actorFrom(e)

	list, err := h.messages.List(ctx, actor)
	if err != nil {
		return apiError(err)
	}
	unread, err := h.messages.UnreadTotal(ctx, actor)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, map[string]any{
		"conversations": list,
		"unread":        unread,
	})
}

func (h *MessageHandler) StartConversation(e *core.RequestEvent) error {
	var req services.StartConversation
	if err := bindBody(e, &req); err != nil {
		return err
	}
	c, m, err := h.messages.Start(e.Request.Context(), actorFrom(e), req)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusCreated, map[string]any{
		"conversation": c,
		"message":      m,
	})
}

func (h *MessageHandler) Messages(e *core.RequestEvent) error {
	list, err := h.messages.Messages(e.Request.Context(), actorFrom(e), e.Request.PathValue("conversationId"))
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, list)
}

func (h *MessageHandler) Send(e *core.RequestEvent) error {
	var req struct {
		Body string `json:"body"`
	}
	if err := bindBody(e, &req); err != nil {
		return err
	}
	m, err := h.messages.Send(e.Request.Context(), actorFrom(e), e.Request.PathValue("conversationId"), req.Body)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusCreated, m)
}

func (h *MessageHandler) MarkRead(e *core.RequestEvent) error {
	c, err := h.messages.MarkRead(e.Request.Context(), actorFrom(e), e.Request.PathValue("conversationId"))
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, c)
}
