package handler

import (
	"fmt"
	"net/http"

	"github.com/juhi-kothari/Pranam-app/internal/middleware"
	"github.com/juhi-kothari/Pranam-app/internal/service"
	"github.com/labstack/echo/v4"
)

type BookmarkHandler struct {
	svc service.BookmarkService
}

func NewBookmarkHandler(svc service.BookmarkService) *BookmarkHandler {
	return &BookmarkHandler{svc: svc}
}

type bookmarkRequest struct {
	PublicationID uint64 `json:"publicationId"`
}

func (h *BookmarkHandler) List(c echo.Context) error {
	page, err := h.svc.List(c.Request().Context(), middleware.CurrentActor(c).UserID, queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", page)
}

func (h *BookmarkHandler) Count(c echo.Context) error {
	n, err := h.svc.Count(c.Request().Context(), middleware.CurrentActor(c).UserID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", map[string]int64{"count": n})
}

func (h *BookmarkHandler) Add(c echo.Context) error {
	var body bookmarkRequest
	if err := c.Bind(&body); err != nil {
		return errBadBody
	}
	b, err := h.svc.Add(c.Request().Context(), middleware.CurrentActor(c).UserID, body.PublicationID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Publication bookmarked successfully", b)
}

func (h *BookmarkHandler) Toggle(c echo.Context) error {
	var body bookmarkRequest
	if err := c.Bind(&body); err != nil {
		return errBadBody
	}
	added, err := h.svc.Toggle(c.Request().Context(), middleware.CurrentActor(c).UserID, body.PublicationID)
	if err != nil {
		return err
	}
	action, msg := "removed", "Publication removed from bookmarks successfully"
	if added {
		action, msg = "added", "Publication bookmarked successfully"
	}
	return respond(c, http.StatusOK, msg, map[string]any{"action": action, "isBookmarked": added})
}

func (h *BookmarkHandler) Check(c echo.Context) error {
	pubID, err := paramID(c, "publicationId")
	if err != nil {
		return err
	}
	ok, err := h.svc.IsBookmarked(c.Request().Context(), middleware.CurrentActor(c).UserID, pubID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", map[string]bool{"isBookmarked": ok})
}

func (h *BookmarkHandler) Remove(c echo.Context) error {
	pubID, err := paramID(c, "publicationId")
	if err != nil {
		return err
	}
	if err := h.svc.Remove(c.Request().Context(), middleware.CurrentActor(c).UserID, pubID); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Bookmark removed successfully", nil)
}

func (h *BookmarkHandler) Clear(c echo.Context) error {
	n, err := h.svc.Clear(c.Request().Context(), middleware.CurrentActor(c).UserID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, fmt.Sprintf("%d bookmarks cleared successfully", n), map[string]int64{"deletedCount": n})
}

func (h *BookmarkHandler) Popular(c echo.Context) error {
	list, err := h.svc.Popular(c.Request().Context(), queryInt(c, "limit"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", list)
}
