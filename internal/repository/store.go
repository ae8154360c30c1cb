package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var ErrInsufficientStock = errors.New("insufficient stock")

// Store groups the repositories so a service can run several of them inside
// one database transaction.
type Store interface {
	Publications() PublicationRepository
	Orders() OrderRepository
	Carts() CartRepository
	Chats() ChatRepository
	Users() UserRepository
	Newsletters() NewsletterRepository
	Blogs() BlogRepository
	Comments() CommentRepository
	Bookmarks() BookmarkRepository
	Forms() FormRepository
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

type store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &store{db: db}
}

func (s *store) Publications() PublicationRepository { return NewPublicationRepository(s.db) }
func (s *store) Orders() OrderRepository             { return NewOrderRepository(s.db) }
func (s *store) Carts() CartRepository               { return NewCartRepository(s.db) }
func (s *store) Chats() ChatRepository               { return NewChatRepository(s.db) }
func (s *store) Users() UserRepository               { return NewUserRepository(s.db) }
func (s *store) Newsletters() NewsletterRepository   { return NewNewsletterRepository(s.db) }
func (s *store) Blogs() BlogRepository               { return NewBlogRepository(s.db) }
func (s *store) Comments() CommentRepository         { return NewCommentRepository(s.db) }
func (s *store) Bookmarks() BookmarkRepository       { return NewBookmarkRepository(s.db) }
func (s *store) Forms() FormRepository               { return NewFormRepository(s.db) }

func (s *store) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&store{db: tx})
	})
}
