package handler

import (
	"fmt"
	"net/http"

	"github.com/juhi-kothari/Pranam-app/internal/middleware"
	"github.com/juhi-kothari/Pranam-app/internal/model"
	"github.com/juhi-kothari/Pranam-app/internal/service"
	"github.com/labstack/echo/v4"
)

type ChatHandler struct {
	svc service.ChatService
}

func NewChatHandler(svc service.ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

func participant(c echo.Context) service.Participant {
	return service.ParticipantFor(middleware.CurrentActor(c))
}

func (h *ChatHandler) Start(c echo.Context) error {
	var body service.StartConversationInput
	if err := c.Bind(&body); err != nil {
		return errBadBody
	}
	res, err := h.svc.StartConversation(c.Request().Context(), participant(c), body)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Conversation started", map[string]any{
		"conversationId": res.Conversation.ConversationID,
		"messageId":      res.Message.ID,
	})
}

func (h *ChatHandler) PostMessage(c echo.Context) error {
	var body service.PostMessageInput
	if err := c.Bind(&body); err != nil {
		return errBadBody
	}
	m, err := h.svc.PostMessage(c.Request().Context(), participant(c), c.Param("conversationId"), body)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Message sent", m)
}

func (h *ChatHandler) Attach(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return fmt.Errorf("%w: file is required", service.ErrValidation)
	}
	if fh.Size > service.MaxAttachmentSize {
		return fmt.Errorf("%w: file must be at most %d MB", service.ErrValidation, service.MaxAttachmentSize>>20)
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	m, err := h.svc.AttachFile(c.Request().Context(), participant(c), c.Param("conversationId"), service.AttachmentInput{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Body:        f,
		Caption:     c.FormValue("message"),
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Attachment sent", m)
}

func (h *ChatHandler) ListMessages(c echo.Context) error {
	page, err := h.svc.ListMessages(c.Request().Context(), participant(c), c.Param("conversationId"), queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", page)
}

func (h *ChatHandler) MarkRead(c echo.Context) error {
	if err := h.svc.MarkRead(c.Request().Context(), participant(c), c.Param("conversationId")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Messages marked as read", nil)
}

func (h *ChatHandler) ListConversations(c echo.Context) error {
	page, err := h.svc.ListConversations(c.Request().Context(),
		model.ConversationStatus(c.QueryParam("status")), queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", page)
}

func (h *ChatHandler) UpdateStatus(c echo.Context) error {
	var body struct {
		Status model.ConversationStatus `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return errBadBody
	}
	conv, err := h.svc.UpdateConversationStatus(c.Request().Context(), c.Param("conversationId"), body.Status)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Conversation status updated", conv)
}
