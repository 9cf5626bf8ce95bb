package handlers

import (
	"net/http"

	"cinema-ticket/internal/services"
	"cinema-ticket/models"

	"github.com/pocketbase/pocketbase/core"
)

type PromotionHandler struct {
	promotions *services.PromotionService
}

func NewPromotionHandler(promotions *services.PromotionService) *PromotionHandler {
	return &PromotionHandler{promotions: promotions}
}

// Active is the public list of running promotions.
func (h *PromotionHandler) Active(e *core.RequestEvent) error {
	list, err := h.promotions.Active(e.Request.Context())
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, list)
}

func (h *PromotionHandler) List(e *core.RequestEvent) error {
	list, err := h.promotions.List(e.Request.Context(), models.PromotionStatus(e.Request.URL.Query().Get("status")))
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, list)
}

func (h *PromotionHandler) Get(e *core.RequestEvent) error {
	v, err := h.promotions.Get(e.Request.Context(), e.Request.PathValue("promotionId"))
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, v)
}

func (h *PromotionHandler) Create(e *core.RequestEvent) error {
	var p models.Promotion
	if err := bindBody(e, &p); err != nil {
		return err
	}
	v, err := h.promotions.Create(e.Request.Context(), &p)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusCreated, v)
}

func (h *PromotionHandler) Update(e *core.RequestEvent) error {
	var in models.Promotion
	if err := bindBody(e, &in); err != nil {
		return err
	}
	v, err := h.promotions.Update(e.Request.Context(), e.Request.PathValue("promotionId"), in)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, v)
}

func (h *PromotionHandler) Delete(e *core.RequestEvent) error {
	if err := h.promotions.Delete(e.Request.Context(), e.Request.PathValue("promotionId")); err != nil {
		return apiError(err)
	}
	return e.NoContent(http.StatusNoContent)
}

func (h *PromotionHandler) Publish(e *core.RequestEvent) error {
	v, err := h.promotions.Publish(e.Request.Context(), e.Request.PathValue("promotionId"))
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, v)
}

func (h *PromotionHandler) Unpublish(e *core.RequestEvent) error {
	v, err := h.promotions.Unpublish(e.Request.Context(), e.Request.PathValue("promotionId"))
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, v)
}
