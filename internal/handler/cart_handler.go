package handler

import (
	"net/http"

	"github.com/juhi-kothari/Pranam-app/internal/middleware"
	"github.com/juhi-kothari/Pranam-app/internal/service"
	"github.com/labstack/echo/v4"
)

type CartHandler struct {
	svc service.CartService
}

func NewCartHandler(svc service.CartService) *CartHandler {
	return &CartHandler{svc: svc}
}

func (h *CartHandler) Get(c echo.Context) error {
	view, err := h.svc.GetCart(c.Request().Context(), middleware.CurrentActor(c).UserID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", view)
}

func (h *CartHandler) AddItem(c echo.Context) error {
	var body struct {
		PublicationID uint64 `json:"publicationId"`
		Quantity      int    `json:"quantity"`
	}
	if err := c.Bind(&body); err != nil {
		return errBadBody
	}
	if body.Quantity == 0 {
		body.Quantity = 1
	}
	view, err := h.svc.AddItem(c.Request().Context(), middleware.CurrentActor(c).UserID, body.PublicationID, body.Quantity)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Item added to cart", view)
}

func (h *CartHandler) UpdateItem(c echo.Context) error {
	pubID, err := paramID(c, "publicationId")
	if err != nil {
		return err
	}
	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := c.Bind(&body); err != nil {
		return errBadBody
	}
	view, err := h.svc.UpdateItem(c.Request().Context(), middleware.CurrentActor(c).UserID, pubID, body.Quantity)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Cart updated", view)
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	pubID, err := paramID(c, "publicationId")
	if err != nil {
		return err
	}
	view, err := h.svc.RemoveItem(c.Request().Context(), middleware.CurrentActor(c).UserID, pubID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Item removed from cart", view)
}

func (h *CartHandler) Clear(c echo.Context) error {
	if err := h.svc.Clear(c.Request().Context(), middleware.CurrentActor(c).UserID); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Cart cleared", nil)
}
