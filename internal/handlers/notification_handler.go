package handlers

import (
	"net/http"

	"cinema-ticket/internal/services"
	"cinema-ticket/models"

	"github.com/pocketbase/pocketbase/core"
)

type NotificationHandler struct {
	preferences *services.PreferenceService
}

func NewNotificationHandler(preferences *services.PreferenceService) *NotificationHandler {
	return &NotificationHandler{preferences: preferences}
}

// GetPreferences returns the user's preferences and the realtime channel to subscribe to.
func (h *NotificationHandler) GetPreferences(e *core.RequestEvent) error {
	actor := actorFrom(e)
	p, err := h.preferences.Get(e.Request.Context(), actor.ID)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, map[string]any{
		"preferences": p,
		"channels":    []string{services.UserChannel(actor.ID), services.PromotionsChannel},
	})
}

func (h *NotificationHandler) UpdatePreferences(e *core.RequestEvent) error {
	var in models.NotificationPreferences
	if err := bindBody(e, &in); err != nil {
		return err
	}
	p, err := h.preferences.Update(e.Request.Context(), actorFrom(e).ID, in)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, p)
}
