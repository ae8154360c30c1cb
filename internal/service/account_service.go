package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/juhi-kothari/Pranam-app/internal/auth"
	"github.com/juhi-kothari/Pranam-app/internal/model"
	"github.com/juhi-kothari/Pranam-app/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const minPasswordLen = 8

type TokenIssuer interface {
	Issue(userID uint64, email, role string) (string, time.Time, error)
}

type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      *model.User `json:"user"`
}

type AccountService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	// EnsureAdmin creates the admin account, or promotes and reactivates an
	// existing account with that email. It never changes an existing
	// password. The bool reports whether a new row was created.
	EnsureAdmin(ctx context.Context, name, email, password string) (*model.User, bool, error)
}

type accountService struct {
	users  repository.UserRepository
	tokens TokenIssuer
	log    *zap.Logger
}

func NewAccountService(users repository.UserRepository, tokens TokenIssuer, log *zap.Logger) AccountService {
	if log == nil {
		log = zap.NewNop()
	}
	return &accountService{users: users, tokens: tokens, log: log}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", validationf("a valid email is required")
	}
	return email, nil
}

func (s *accountService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if password == "" {
		return nil, validationf("password is required")
	}
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
		}
		return nil, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		s.log.Info("login rejected", zap.Uint64("user_id", u.ID))
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}
	if !u.IsActive {
		return nil, fmt.Errorf("%w: account is disabled", ErrUnauthorized)
	}
	token, exp, err := s.tokens.Issue(u.ID, u.Email, string(u.Role))
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: exp, User: u}, nil
}

func (s *accountService) EnsureAdmin(ctx context.Context, name, email, password string) (*model.User, bool, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, false, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Administrator"
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		if existing.Role != model.RoleAdmin || !existing.IsActive {
			if err := s.users.Update(ctx, existing.ID, map[string]interface{}{
				"role":      model.RoleAdmin,
				"is_active": true,
			}); err != nil {
				return nil, false, err
			}
			existing.Role = model.RoleAdmin
			existing.IsActive = true
			s.log.Info("promoted existing account to admin", zap.Uint64("user_id", existing.ID))
		}
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	if len(password) < minPasswordLen {
		return nil, false, validationf("password must be at least %d characters", minPasswordLen)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, false, err
	}
	u := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, false, err
	}
	s.log.Info("admin account created", zap.Uint64("user_id", u.ID))
	return u, true, nil
}
