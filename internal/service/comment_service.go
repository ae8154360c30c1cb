package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/juhi-kothari/Pranam-app/internal/logging"
	"github.com/juhi-kothari/Pranam-app/internal/model"
	"github.com/juhi-kothari/Pranam-app/internal/repository"
	"go.uber.org/zap"
)

const (
	maxCommentLen     = 1000
	maxCommentNameLen = 100
)

type CommentInput struct {
	BlogID   uint64  `json:"blogId"`
	ParentID *uint64 `json:"parentComment"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Text     string  `json:"text"`
}

type CommentStats struct {
	Total    int64 `json:"total"`
	Approved int64 `json:"approved"`
	Pending  int64 `json:"pending"`
}

type CommentService interface {
	// ListComments pages a post's top-level comments with their replies.
	// Admins also see comments awaiting moderation.
	ListComments(ctx context.Context, viewer *Actor, blogID uint64, page, limit int) (*Page[model.Comment], error)
	// AddComment posts a comment or a reply. Comments from signed-in
	// readers are approved at once; anonymous ones wait for moderation.
	AddComment(ctx context.Context, viewer *Actor, in CommentInput) (*model.Comment, error)
	ApproveComment(ctx context.Context, id uint64) (*model.Comment, error)
	DeleteComment(ctx context.Context, id uint64) error
	ListPending(ctx context.Context, page, limit int) (*Page[model.Comment], error)
	Stats(ctx context.Context) (*CommentStats, error)
}

type commentService struct {
	store repository.Store
	log   *zap.Logger
}

func NewCommentService(store repository.Store, log *zap.Logger) CommentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &commentService{store: store, log: log}
}

func (s *commentService) logger(ctx context.Context) *zap.Logger {
	return logging.FromContext(ctx, s.log)
}

func (s *commentService) visiblePost(ctx context.Context, viewer *Actor, blogID uint64) (*model.BlogPost, error) {
	post, err := s.store.Blogs().FindByID(ctx, blogID)
	if err != nil {
		return nil, mapRepoErr(err, "blog post")
	}
	if !visibleTo(post, viewer) {
		return nil, fmt.Errorf("%w: blog post", ErrNotFound)
	}
	return post, nil
}

func (s *commentService) ListComments(ctx context.Context, viewer *Actor, blogID uint64, page, limit int) (*Page[model.Comment], error) {
	if _, err := s.visiblePost(ctx, viewer, blogID); err != nil {
		return nil, err
	}
	page, limit, offset := normalizePage(page, limit, 10, 50)
	includePending := viewer != nil && viewer.IsAdmin()
	list, total, err := s.store.Comments().ListTopLevel(ctx, blogID, includePending, offset, limit)
	if err != nil {
		return nil, err
	}
	return newPage(list, page, limit, total), nil
}

func (s *commentService) AddComment(ctx context.Context, viewer *Actor, in CommentInput) (*model.Comment, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationf("name is required")
	}
	if utf8.RuneCountInString(name) > maxCommentNameLen {
		return nil, validationf("name must be at most %d characters", maxCommentNameLen)
	}
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, validationf("text is required")
	}
	if utf8.RuneCountInString(text) > maxCommentLen {
		return nil, validationf("text must be at most %d characters", maxCommentLen)
	}
	var email string
	if strings.TrimSpace(in.Email) != "" {
		var err error
		if email, err = normalizeEmail(in.Email); err != nil {
			return nil, err
		}
	}
	if in.BlogID == 0 {
		return nil, validationf("blogId is required")
	}

	post, err := s.visiblePost(ctx, viewer, in.BlogID)
	if err != nil {
		return nil, err
	}
	if !post.AllowComments {
		return nil, validationf("comments are closed on this post")
	}
	if in.ParentID != nil {
		parent, err := s.store.Comments().FindByID(ctx, *in.ParentID)
		if err != nil {
			return nil, mapRepoErr(err, "parent comment")
		}
		if parent.BlogID != post.ID {
			return nil, fmt.Errorf("%w: parent comment", ErrNotFound)
		}
		if parent.ParentID != nil {
			return nil, validationf("replies cannot be nested")
		}
	}

	c := &model.Comment{
		BlogID:   post.ID,
		ParentID: in.ParentID,
		Name:     name,
		Email:    email,
		Text:     text,
	}
	if viewer != nil {
		uid := viewer.UserID
		c.UserID = &uid
		c.IsApproved = true
	}
	if err := s.store.Comments().Create(ctx, c); err != nil {
		return nil, err
	}
	s.logger(ctx).Info("comment added",
		zap.Uint64("blog_id", post.ID),
		zap.Uint64("comment_id", c.ID),
		zap.Bool("approved", c.IsApproved))
	return c, nil
}

func (s *commentService) ApproveComment(ctx context.Context, id uint64) (*model.Comment, error) {
	c, err := s.store.Comments().FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err, "comment")
	}
	if c.IsApproved {
		return nil, validationf("comment is already approved")
	}
	if err := s.store.Comments().Approve(ctx, id); err != nil {
		return nil, err
	}
	c.IsApproved = true
	return c, nil
}

func (s *commentService) DeleteComment(ctx context.Context, id uint64) error {
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := tx.Comments().FindByID(ctx, id); err != nil {
			return err
		}
		return tx.Comments().Delete(ctx, id)
	})
	if err != nil {
		return mapRepoErr(err, "comment")
	}
	s.logger(ctx).Info("comment deleted", zap.Uint64("comment_id", id))
	return nil
}

func (s *commentService) ListPending(ctx context.Context, page, limit int) (*Page[model.Comment], error) {
	page, limit, offset := normalizePage(page, limit, 20, 50)
	list, total, err := s.store.Comments().ListPending(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	return newPage(list, page, limit, total), nil
}

func (s *commentService) Stats(ctx context.Context) (*CommentStats, error) {
	total, approved, err := s.store.Comments().Counts(ctx)
	if err != nil {
		return nil, err
	}
	return &CommentStats{Total: total, Approved: approved, Pending: total - approved}, nil
}
