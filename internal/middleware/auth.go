package middleware

import (
	"fmt"
	"strings"

	"github.com/juhi-kothari/Pranam-app/internal/auth"
	"github.com/juhi-kothari/Pranam-app/internal/model"
	"github.com/juhi-kothari/Pranam-app/internal/service"
	"github.com/labstack/echo/v4"
)

const actorKey = "actor"

type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	tokens TokenParser
}

func NewAuthMiddleware(tokens TokenParser) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

func bearer(c echo.Context) string {
	authz := c.Request().Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(authz, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
}

func (m *AuthMiddleware) actor(token string) (*service.Actor, error) {
	claims, err := m.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	return &service.Actor{UserID: claims.UserID, Role: model.Role(claims.Role)}, nil
}

func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := bearer(c)
		if token == "" {
			return fmt.Errorf("%w: missing bearer token", service.ErrUnauthorized)
		}
		a, err := m.actor(token)
		if err != nil {
			return fmt.Errorf("%w: invalid token", service.ErrUnauthorized)
		}
		c.Set(actorKey, a)
		return next(c)
	}
}

// OptionalAuth attaches the caller when a valid token is present and lets
// the request through anonymously otherwise.
func (m *AuthMiddleware) OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if token := bearer(c); token != "" {
			if a, err := m.actor(token); err == nil {
				c.Set(actorKey, a)
			}
		}
		return next(c)
	}
}

// RequireAdmin must run after RequireAuth.
func (m *AuthMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		a := CurrentActor(c)
		if a == nil {
			return fmt.Errorf("%w: missing bearer token", service.ErrUnauthorized)
		}
		if !a.IsAdmin() {
			return fmt.Errorf("%w: admin access required", service.ErrForbidden)
		}
		return next(c)
	}
}

// CurrentActor returns the authenticated caller, or nil.
func CurrentActor(c echo.Context) *service.Actor {
	a, _ := c.Get(actorKey).(*service.Actor)
	return a
}
