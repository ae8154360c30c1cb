package handler

import (
	"net/http"

	"github.com/juhi-kothari/Pranam-app/internal/middleware"
	"github.com/juhi-kothari/Pranam-app/internal/model"
	"github.com/juhi-kothari/Pranam-app/internal/service"
	"github.com/labstack/echo/v4"
)

type BlogHandler struct {
	posts    service.BlogService
	comments service.CommentService
}

func NewBlogHandler(posts service.BlogService, comments service.CommentService) *BlogHandler {
	return &BlogHandler{posts: posts, comments: comments}
}

type postCreated struct {
	ID          uint64           `json:"id"`
	Title       string           `json:"title"`
	Slug        string           `json:"slug"`
	Status      model.BlogStatus `json:"status"`
	ReadingTime int              `json:"readingTime"`
}

func (h *BlogHandler) Create(c echo.Context) error {
	var body service.BlogPostInput
	if err := c.Bind(&body); err != nil {
		return errBadBody
	}
	post, err := h.posts.CreatePost(c.Request().Context(), *middleware.CurrentActor(c), body)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Blog post created successfully", postCreated{
		ID:          post.ID,
		Title:       post.Title,
		Slug:        post.Slug,
		Status:      post.Status,
		ReadingTime: post.ReadingTime(),
	})
}

func (h *BlogHandler) Update(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var body service.BlogPostPatch
	if err := c.Bind(&body); err != nil {
		return errBadBody
	}
	post, err := h.posts.UpdatePost(c.Request().Context(), id, body)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Blog post updated successfully", post)
}

func (h *BlogHandler) Delete(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.posts.DeletePost(c.Request().Context(), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Blog post deleted successfully", nil)
}

func (h *BlogHandler) Get(c echo.Context) error {
	post, err := h.posts.GetPost(c.Request().Context(), middleware.CurrentActor(c), c.Param("slug"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", post)
}

func (h *BlogHandler) Like(c echo.Context) error {
	likes, err := h.posts.LikePost(c.Request().Context(), middleware.CurrentActor(c), c.Param("slug"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Blog liked successfully", map[string]int{"likes": likes})
}

func (h *BlogHandler) ListComments(c echo.Context) error {
	blogID, err := paramID(c, "blogId")
	if err != nil {
		return err
	}
	page, err := h.comments.ListComments(c.Request().Context(), middleware.CurrentActor(c), blogID, queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", page)
}

func (h *BlogHandler) AddComment(c echo.Context) error {
	var body service.CommentInput
	if err := c.Bind(&body); err != nil {
		return errBadBody
	}
	comment, err := h.comments.AddComment(c.Request().Context(), middleware.CurrentActor(c), body)
	if err != nil {
		return err
	}
	msg := "Comment submitted for approval"
	if comment.IsApproved {
		msg = "Comment posted successfully"
	}
	return respond(c, http.StatusCreated, msg, comment)
}

func (h *BlogHandler) ApproveComment(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	comment, err := h.comments.ApproveComment(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Comment approved successfully", comment)
}

func (h *BlogHandler) DeleteComment(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.comments.DeleteComment(c.Request().Context(), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Comment deleted successfully", nil)
}

func (h *BlogHandler) PendingComments(c echo.Context) error {
	page, err := h.comments.ListPending(c.Request().Context(), queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", page)
}

func (h *BlogHandler) CommentStats(c echo.Context) error {
	stats, err := h.comments.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", stats)
}
