package handlers

import (
	"net/http"

	"cinema-ticket/internal/services"
	"cinema-ticket/models"

	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"
)

type CouponHandler struct {
	coupons *services.CouponService
}

func NewCouponHandler(coupons *services.CouponService) *CouponHandler {
	return &CouponHandler{coupons: coupons}
}

func (h *CouponHandler) List(e *core.RequestEvent) error {
	active, err := queryBool(e, "active")
	if err != nil {
		return err
	}

	coupons, err := h.coupons.List(e.Request.Context(), services.CouponFilter{
		Active: active,
		Search: e.Request.URL.Query().Get("search"),
	})
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, coupons)
}

func (h *CouponHandler) Get(e *core.RequestEvent) error {
	c, err := h.coupons.Get(e.Request.Context(), e.Request.PathValue("couponId"))
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, c)
}

func (h *CouponHandler) Create(e *core.RequestEvent) error {
	var c models.Coupon
	if err := bindBody(e, &c); err != nil {
		return err
	}
	if err := h.coupons.Create(e.Request.Context(), &c); err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusCreated, c)
}

func (h *CouponHandler) Update(e *core.RequestEvent) error {
	var in models.Coupon
	if err := bindBody(e, &in); err != nil {
		return err
	}
	c, err := h.coupons.Update(e.Request.Context(), e.Request.PathValue("couponId"), in)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, c)
}

func (h *CouponHandler) Deactivate(e *core.RequestEvent) error {
	c, err := h.coupons.Deactivate(e.Request.Context(), e.Request.PathValue("couponId"))
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, c)
}

func (h *CouponHandler) Delete(e *core.RequestEvent) error {
	if err := h.coupons.Delete(e.Request.Context(), e.Request.PathValue("couponId")); err != nil {
		return apiError(err)
	}
	return e.NoContent(http.StatusNoContent)
}

// Check previews the discount a coupon gives on a subtotal.
func (h *CouponHandler) Check(e *core.RequestEvent) error {
	var req struct {
		Code     string          `json:"code"`
		Subtotal decimal.Decimal `json:"subtotal"`
	}
	if err := bindBody(e, &req); err != nil {
		return err
	}

	c, res, err := h.coupons.Check(e.Request.Context(), req.Code, req.Subtotal)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, map[string]any{
		"code":        c.Code,
		"type":        c.Type,
		"description": c.Description,
		"subtotal":    res.Subtotal,
		"discount":    res.Discount,
		"total":       res.Total,
	})
}
