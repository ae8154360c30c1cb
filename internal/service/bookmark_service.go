package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/juhi-kothari/Pranam-app/internal/model"
	"github.com/juhi-kothari/Pranam-app/internal/repository"
	"gorm.io/gorm"
)

type PopularPublication struct {
	Publication   *model.Publication `json:"publication"`
	BookmarkCount int64              `json:"bookmarkCount"`
}

type BookmarkService interface {
	List(ctx context.Context, userID uint64, page, limit int) (*Page[model.Bookmark], error)
	Count(ctx context.Context, userID uint64) (int64, error)
	Add(ctx context.Context, userID, publicationID uint64) (*model.Bookmark, error)
	Remove(ctx context.Context, userID, publicationID uint64) error
	// Toggle adds the bookmark when it is missing and removes it otherwise.
	// It reports whether the publication is bookmarked afterwards.
	Toggle(ctx context.Context, userID, publicationID uint64) (bool, error)
	IsBookmarked(ctx context.Context, userID, publicationID uint64) (bool, error)
	Clear(ctx context.Context, userID uint64) (int64, error)
	// Popular ranks active publications by how many readers bookmarked them.
	Popular(ctx context.Context, limit int) ([]PopularPublication, error)
}

type bookmarkService struct {
	store repository.Store
}

func NewBookmarkService(store repository.Store) BookmarkService {
	return &bookmarkService{store: store}
}

func (s *bookmarkService) List(ctx context.Context, userID uint64, page, limit int) (*Page[model.Bookmark], error) {
	page, limit, offset := normalizePage(page, limit, 12, 50)
	list, total, err := s.store.Bookmarks().ListByUser(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}
	return newPage(list, page, limit, total), nil
}

func (s *bookmarkService) Count(ctx context.Context, userID uint64) (int64, error) {
	return s.store.Bookmarks().CountByUser(ctx, userID)
}

func (s *bookmarkService) activePublication(ctx context.Context, tx repository.Store, id uint64) (*model.Publication, error) {
	if id == 0 {
		return nil, validationf("publicationId is required")
	}
	p, err := tx.Publications().FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err, "publication")
	}
	if !p.IsActive {
		return nil, fmt.Errorf("%w: publication", ErrNotFound)
	}
	return p, nil
}

func (s *bookmarkService) Add(ctx context.Context, userID, publicationID uint64) (*model.Bookmark, error) {
	var b *model.Bookmark
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		p, err := s.activePublication(ctx, tx, publicationID)
		if err != nil {
			return err
		}
		exists, err := tx.Bookmarks().Exists(ctx, userID, publicationID)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyBookmarked
		}
		b = &model.Bookmark{UserID: userID, PublicationID: publicationID}
		if err := tx.Bookmarks().Create(ctx, b); err != nil {
			return err
		}
		b.Publication = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *bookmarkService) Remove(ctx context.Context, userID, publicationID uint64) error {
	removed, err := s.store.Bookmarks().Delete(ctx, userID, publicationID)
	if err != nil {
		return err
	}
	if !removed {
		return mapRepoErr(gorm.ErrRecordNotFound, "bookmark")
	}
	return nil
}

func (s *bookmarkService) Toggle(ctx context.Context, userID, publicationID uint64) (bool, error) {
	var added bool
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := s.activePublication(ctx, tx, publicationID); err != nil {
			return err
		}
		removed, err := tx.Bookmarks().Delete(ctx, userID, publicationID)
		if err != nil || removed {
			return err
		}
		added = true
		return tx.Bookmarks().Create(ctx, &model.Bookmark{UserID: userID, PublicationID: publicationID})
	})
	return added, err
}

func (s *bookmarkService) IsBookmarked(ctx context.Context, userID, publicationID uint64) (bool, error) {
	return s.store.Bookmarks().Exists(ctx, userID, publicationID)
}

func (s *bookmarkService) Clear(ctx context.Context, userID uint64) (int64, error) {
	return s.store.Bookmarks().DeleteByUser(ctx, userID)
}

func (s *bookmarkService) Popular(ctx context.Context, limit int) ([]PopularPublication, error) {
	_, limit, _ = normalizePage(1, limit, 10, 20)
	rows, err := s.store.Bookmarks().MostBookmarked(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]PopularPublication, 0, len(rows))
	for _, r := range rows {
		p, err := s.store.Publications().FindByID(ctx, r.PublicationID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if !p.IsActive {
			continue
		}
		out = append(out, PopularPublication{Publication: p, BookmarkCount: r.BookmarkCount})
	}
	return out, nil
}
