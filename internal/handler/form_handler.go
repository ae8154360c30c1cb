package handler

import (
	"net/http"

	"github.com/juhi-kothari/Pranam-app/internal/middleware"
	"github.com/juhi-kothari/Pranam-app/internal/model"
	"github.com/juhi-kothari/Pranam-app/internal/service"
	"github.com/labstack/echo/v4"
)

type FormHandler struct {
	svc service.FormService
}

func NewFormHandler(svc service.FormService) *FormHandler {
	return &FormHandler{svc: svc}
}

func (h *FormHandler) SubmitHealing(c echo.Context) error {
	var body service.HealingRequestInput
	if err := c.Bind(&body); err != nil {
		return errBadBody
	}
	req, err := h.svc.SubmitHealingRequest(c.Request().Context(), middleware.CurrentActor(c), body)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Healing form submitted successfully", map[string]any{
		"id":     req.ID,
		"status": req.Status,
	})
}

func (h *FormHandler) ListHealing(c echo.Context) error {
	page, err := h.svc.ListHealingRequests(c.Request().Context(), model.HealingStatus(c.QueryParam("status")), queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", page)
}

func (h *FormHandler) UpdateHealingStatus(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var body service.HealingStatusInput
	if err := c.Bind(&body); err != nil {
		return errBadBody
	}
	req, err := h.svc.UpdateHealingStatus(c.Request().Context(), id, body)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Form status updated successfully", req)
}

func (h *FormHandler) SubmitQuestion(c echo.Context) error {
	var body service.QuestionInput
	if err := c.Bind(&body); err != nil {
		return errBadBody
	}
	q, err := h.svc.SubmitQuestion(c.Request().Context(), middleware.CurrentActor(c), body)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Question submitted successfully", map[string]any{
		"id":     q.ID,
		"status": q.Status,
	})
}

func (h *FormHandler) ListQuestions(c echo.Context) error {
	page, err := h.svc.ListQuestions(c.Request().Context(), model.QuestionStatus(c.QueryParam("status")), queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", page)
}

func (h *FormHandler) AnswerQuestion(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var body service.AnswerInput
	if err := c.Bind(&body); err != nil {
		return errBadBody
	}
	q, err := h.svc.AnswerQuestion(c.Request().Context(), id, body)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Question answered successfully", q)
}
