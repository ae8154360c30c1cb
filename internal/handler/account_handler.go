package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/juhi-kothari/Pranam-app/internal/service"
	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	svc service.AccountService
}

func NewAuthHandler(svc service.AccountService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

func (h *AuthHandler) Login(c echo.Context) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&body); err != nil {
		return errBadBody
	}
	res, err := h.svc.Login(c.Request().Context(), body.Email, body.Password)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Login successful", res)
}

type NewsletterHandler struct {
	svc service.NewsletterService
}

func NewNewsletterHandler(svc service.NewsletterService) *NewsletterHandler {
	return &NewsletterHandler{svc: svc}
}

type newsletterRequest struct {
	Email  string `json:"email"`
	Source string `json:"source"`
}

func (h *NewsletterHandler) Subscribe(c echo.Context) error {
	var body newsletterRequest
	if err := c.Bind(&body); err != nil {
		return errBadBody
	}
	sub, err := h.svc.Subscribe(c.Request().Context(), body.Email, body.Source)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Subscribed to newsletter", sub)
}

func (h *NewsletterHandler) Unsubscribe(c echo.Context) error {
	var body newsletterRequest
	if err := c.Bind(&body); err != nil {
		return errBadBody
	}
	if err := h.svc.Unsubscribe(c.Request().Context(), body.Email); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Unsubscribed from newsletter", nil)
}

func (h *NewsletterHandler) List(c echo.Context) error {
	var active *bool
	if v := c.QueryParam("active"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: active must be true or false", service.ErrValidation)
		}
		active = &b
	}
	page, err := h.svc.ListSubscribers(c.Request().Context(), active, queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", page)
}
