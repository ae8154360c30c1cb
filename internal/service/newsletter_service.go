package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/juhi-kothari/Pranam-app/internal/model"
	"github.com/juhi-kothari/Pranam-app/internal/repository"
	"gorm.io/gorm"
)

type NewsletterService interface {
	Subscribe(ctx context.Context, email, source string) (*model.NewsletterSubscription, error)
	Unsubscribe(ctx context.Context, email string) error
	ListSubscribers(ctx context.Context, active *bool, page, limit int) (*Page[model.NewsletterSubscription], error)
}

type newsletterService struct {
	repo repository.NewsletterRepository
	now  func() time.Time
}

func NewNewsletterService(repo repository.NewsletterRepository) NewsletterService {
	return &newsletterService{repo: repo, now: time.Now}
}

func (s *newsletterService) Subscribe(ctx context.Context, email, source string) (*model.NewsletterSubscription, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	source = strings.TrimSpace(source)
	if source == "" {
		source = "website"
	}
	if len(source) > 64 {
		source = source[:64]
	}
	now := s.now()

	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		if existing.IsActive {
			return nil, ErrAlreadySubscribed
		}
		if err := s.repo.Update(ctx, existing.ID, map[string]interface{}{
			"is_active":       true,
			"subscribed_at":   now,
			"unsubscribed_at": nil,
			"source":          source,
		}); err != nil {
			return nil, err
		}
		existing.IsActive = true
		existing.SubscribedAt = now
		existing.UnsubscribedAt = nil
		existing.Source = source
		return existing, nil
	}

	sub := &model.NewsletterSubscription{
		Email:        email,
		IsActive:     true,
		Source:       source,
		SubscribedAt: now,
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *newsletterService) Unsubscribe(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return mapRepoErr(err, "subscription")
	}
	if !existing.IsActive {
		return nil
	}
	return s.repo.Update(ctx, existing.ID, map[string]interface{}{
		"is_active":       false,
		"unsubscribed_at": s.now(),
	})
}

func (s *newsletterService) ListSubscribers(ctx context.Context, active *bool, page, limit int) (*Page[model.NewsletterSubscription], error) {
	page, limit, offset := normalizePage(page, limit, 20, 100)
	list, total, err := s.repo.List(ctx, active, offset, limit)
	if err != nil {
		return nil, err
	}
	return newPage(list, page, limit, total), nil
}
