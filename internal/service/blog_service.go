package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/juhi-kothari/Pranam-app/internal/logging"
	"github.com/juhi-kothari/Pranam-app/internal/model"
	"github.com/juhi-kothari/Pranam-app/internal/repository"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	maxTitleLen   = 300
	maxExcerptLen = 500
)

// StringList decodes from a JSON array of strings or from a single
// comma-separated string.
type StringList []string

func (l *StringList) UnmarshalJSON(b []byte) error {
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		*l = strings.Split(one, ",")
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return fmt.Errorf("%w: expected a string or a list of strings", ErrValidation)
	}
	*l = many
	return nil
}

// clean trims entries and drops blanks and repeats.
func (l StringList) clean() datatypes.JSONSlice[string] {
	out := datatypes.JSONSlice[string]{}
	seen := make(map[string]struct{}, len(l))
	for _, v := range l {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// BlogPostInput creates a post. Tags and categories may be sent either as
// a JSON array or as one comma-separated string.
type BlogPostInput struct {
	Title           string     `json:"title"`
	Content         string     `json:"content"`
	Excerpt         string     `json:"excerpt"`
	FeaturedImage   string     `json:"featuredImage"`
	Tags            StringList `json:"tags"`
	Categories      StringList `json:"categories"`
	Status          string     `json:"status"`
	MetaTitle       string     `json:"metaTitle"`
	MetaDescription string     `json:"metaDescription"`
	IsFeatured      bool       `json:"isFeatured"`
	AllowComments   *bool      `json:"allowComments"`
}

// BlogPostPatch updates only the fields that are set. The slug is kept when
// the title changes so existing links keep working.
type BlogPostPatch struct {
	Title           *string     `json:"title"`
	Content         *string     `json:"content"`
	Excerpt         *string     `json:"excerpt"`
	FeaturedImage   *string     `json:"featuredImage"`
	Tags            *StringList `json:"tags"`
	Categories      *StringList `json:"categories"`
	Status          *string     `json:"status"`
	MetaTitle       *string     `json:"metaTitle"`
	MetaDescription *string     `json:"metaDescription"`
	IsFeatured      *bool       `json:"isFeatured"`
	AllowComments   *bool       `json:"allowComments"`
}

type BlogService interface {
	CreatePost(ctx context.Context, author Actor, in BlogPostInput) (*model.BlogPost, error)
	UpdatePost(ctx context.Context, id uint64, in BlogPostPatch) (*model.BlogPost, error)
	DeletePost(ctx context.Context, id uint64) error
	// GetPost returns a post by slug and counts the view. Drafts are only
	// visible to admins.
	GetPost(ctx context.Context, viewer *Actor, slug string) (*model.BlogPost, error)
	LikePost(ctx context.Context, viewer *Actor, slug string) (int, error)
}

type blogService struct {
	store repository.Store
	log   *zap.Logger
	now   func() time.Time
}

func NewBlogService(store repository.Store, log *zap.Logger) BlogService {
	if log == nil {
		log = zap.NewNop()
	}
	return &blogService{store: store, log: log, now: time.Now}
}

func (s *blogService) logger(ctx context.Context) *zap.Logger {
	return logging.FromContext(ctx, s.log)
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// slugify lowercases title and joins its ASCII alphanumeric runs with '-'.
func slugify(title string) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if len(slug) > maxTitleLen {
		slug = strings.TrimRight(slug[:maxTitleLen], "-")
	}
	if slug == "" {
		return "post"
	}
	return slug
}

func (s *blogService) uniqueSlug(ctx context.Context, title string) (string, error) {
	base := slugify(title)
	slug := base
	for n := 1; ; n++ {
		taken, err := s.store.Blogs().SlugTaken(ctx, slug)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = base + "-" + strconv.Itoa(n)
	}
}

func parseBlogStatus(raw string) (model.BlogStatus, error) {
	st := model.BlogStatus(strings.ToLower(strings.TrimSpace(raw)))
	if st == "" {
		return model.BlogDraft, nil
	}
	if !st.Valid() {
		return "", validationf("status must be draft or published")
	}
	return st, nil
}

func checkTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", validationf("title is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "", validationf("title must be at most %d characters", maxTitleLen)
	}
	return title, nil
}

func checkExcerpt(excerpt string) (string, error) {
	excerpt = strings.TrimSpace(excerpt)
	if utf8.RuneCountInString(excerpt) > maxExcerptLen {
		return "", validationf("excerpt must be at most %d characters", maxExcerptLen)
	}
	return excerpt, nil
}

func (s *blogService) CreatePost(ctx context.Context, author Actor, in BlogPostInput) (*model.BlogPost, error) {
	title, err := checkTitle(in.Title)
	if err != nil {
		return nil, err
	}
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, validationf("content is required")
	}
	excerpt, err := checkExcerpt(in.Excerpt)
	if err != nil {
		return nil, err
	}
	status, err := parseBlogStatus(in.Status)
	if err != nil {
		return nil, err
	}
	slug, err := s.uniqueSlug(ctx, title)
	if err != nil {
		return nil, err
	}

	authorID := author.UserID
	post := &model.BlogPost{
		Title:           title,
		Slug:            slug,
		Excerpt:         excerpt,
		Content:         content,
		FeaturedImage:   strings.TrimSpace(in.FeaturedImage),
		AuthorID:        &authorID,
		Status:          status,
		Tags:            in.Tags.clean(),
		Categories:      in.Categories.clean(),
		MetaTitle:       strings.TrimSpace(in.MetaTitle),
		MetaDescription: strings.TrimSpace(in.MetaDescription),
		IsFeatured:      in.IsFeatured,
		AllowComments:   in.AllowComments == nil || *in.AllowComments,
	}
	if status == model.BlogPublished {
		now := s.now()
		post.PublishedAt = &now
	}
	if err := s.store.Blogs().Create(ctx, post); err != nil {
		return nil, err
	}
	s.logger(ctx).Info("blog post created",
		zap.Uint64("blog_id", post.ID),
		zap.String("slug", post.Slug),
		zap.String("status", string(post.Status)))
	return post, nil
}

func (s *blogService) UpdatePost(ctx context.Context, id uint64, in BlogPostPatch) (*model.BlogPost, error) {
	post, err := s.store.Blogs().FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err, "blog post")
	}

	fields := map[string]interface{}{}
	if in.Title != nil {
		title, err := checkTitle(*in.Title)
		if err != nil {
			return nil, err
		}
		fields["title"] = title
	}
	if in.Content != nil {
		content := strings.TrimSpace(*in.Content)
		if content == "" {
			return nil, validationf("content is required")
		}
		fields["content"] = content
	}
	if in.Excerpt != nil {
		excerpt, err := checkExcerpt(*in.Excerpt)
		if err != nil {
			return nil, err
		}
		fields["excerpt"] = excerpt
	}
	if in.FeaturedImage != nil {
		fields["featured_image"] = strings.TrimSpace(*in.FeaturedImage)
	}
	if in.Tags != nil {
		fields["tags"] = in.Tags.clean()
	}
	if in.Categories != nil {
		fields["categories"] = in.Categories.clean()
	}
	if in.Status != nil {
		status, err := parseBlogStatus(*in.Status)
		if err != nil {
			return nil, err
		}
		fields["status"] = status
		if status == model.BlogPublished && post.PublishedAt == nil {
			fields["published_at"] = s.now()
		}
	}
	if in.MetaTitle != nil {
		fields["meta_title"] = strings.TrimSpace(*in.MetaTitle)
	}
	if in.MetaDescription != nil {
		fields["meta_description"] = strings.TrimSpace(*in.MetaDescription)
	}
	if in.IsFeatured != nil {
		fields["is_featured"] = *in.IsFeatured
	}
	if in.AllowComments != nil {
		fields["allow_comments"] = *in.AllowComments
	}
	if len(fields) == 0 {
		return post, nil
	}
	if err := s.store.Blogs().Update(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.store.Blogs().FindByID(ctx, id)
}

func (s *blogService) DeletePost(ctx context.Context, id uint64) error {
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Comments().DeleteByBlog(ctx, id); err != nil {
			return err
		}
		return tx.Blogs().Delete(ctx, id)
	})
	if err != nil {
		return mapRepoErr(err, "blog post")
	}
	s.logger(ctx).Info("blog post deleted", zap.Uint64("blog_id", id))
	return nil
}

func visibleTo(post *model.BlogPost, viewer *Actor) bool {
	return post.Status == model.BlogPublished || (viewer != nil && viewer.IsAdmin())
}

func (s *blogService) GetPost(ctx context.Context, viewer *Actor, slug string) (*model.BlogPost, error) {
	post, err := s.store.Blogs().FindBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
	if err != nil {
		return nil, mapRepoErr(err, "blog post")
	}
	if !visibleTo(post, viewer) {
		return nil, fmt.Errorf("%w: blog post", ErrNotFound)
	}
	if err := s.store.Blogs().IncrementViews(ctx, post.ID); err != nil {
		s.logger(ctx).Warn("count blog view", zap.Uint64("blog_id", post.ID), zap.Error(err))
	} else {
		post.ViewCount++
	}
	return post, nil
}

func (s *blogService) LikePost(ctx context.Context, viewer *Actor, slug string) (int, error) {
	post, err := s.store.Blogs().FindBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
	if err != nil {
		return 0, mapRepoErr(err, "blog post")
	}
	if !visibleTo(post, viewer) {
		return 0, fmt.Errorf("%w: blog post", ErrNotFound)
	}
	likes, err := s.store.Blogs().IncrementLikes(ctx, post.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("%w: blog post", ErrNotFound)
	}
	return likes, err
}
