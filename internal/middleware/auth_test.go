package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/juhi-kothari/Pranam-app/internal/auth"
	"github.com/juhi-kothari/Pranam-app/internal/model"
	"github.com/juhi-kothari/Pranam-app/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func token(t *testing.T, iss *auth.Issuer, id uint64, role model.Role) string {
	t.Helper()
	tok, _, err := iss.Issue(id, "u@example.com", string(role))
	require.NoError(t, err)
	return tok
}

// run passes a request through mw and reports the actor the handler saw.
func run(mw echo.MiddlewareFunc, authz string) (*service.Actor, bool, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authz != "" {
		req.Header.Set(echo.HeaderAuthorization, authz)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	var seen *service.Actor
	called := false
	err := mw(func(c echo.Context) error {
		called = true
		seen = CurrentActor(c)
		return nil
	})(c)
	return seen, called, err
}

func TestRequireAuth(t *testing.T) {
	iss := auth.NewIssuer("secret", time.Hour)
	m := NewAuthMiddleware(iss)

	actor, called, err := run(m.RequireAuth, "Bearer "+token(t, iss, 7, model.RoleUser))
	require.NoError(t, err)
	assert.True(t, called)
	require.NotNil(t, actor)
	assert.Equal(t, uint64(7), actor.UserID)
	assert.Equal(t, model.RoleUser, actor.Role)

	other := auth.NewIssuer("different", time.Hour)
	for name, h := range map[string]string{
		"missing":      "",
		"not bearer":   "Basic abc",
		"garbage":      "Bearer not.a.jwt",
		"wrong secret": "Bearer " + token(t, other, 7, model.RoleUser),
	} {
		_, called, err := run(m.RequireAuth, h)
		assert.ErrorIs(t, err, service.ErrUnauthorized, name)
		assert.False(t, called, name)
	}
}

func TestOptionalAuth(t *testing.T) {
	iss := auth.NewIssuer("secret", time.Hour)
	m := NewAuthMiddleware(iss)

	actor, called, err := run(m.OptionalAuth, "")
	require.NoError(t, err)
	assert.True(t, called)
	assert.Nil(t, actor)

	actor, _, err = run(m.OptionalAuth, "Bearer junk")
	require.NoError(t, err)
	assert.Nil(t, actor, "invalid tokens fall back to anonymous")

	actor, _, _ = run(m.OptionalAuth, "Bearer "+token(t, iss, 3, model.RoleAdmin))
	require.NotNil(t, actor)
	assert.True(t, actor.IsAdmin())
}

func TestRequireAdmin(t *testing.T) {
	iss := auth.NewIssuer("secret", time.Hour)
	m := NewAuthMiddleware(iss)
	chain := func(next echo.HandlerFunc) echo.HandlerFunc { return m.RequireAuth(m.RequireAdmin(next)) }

	_, called, err := run(chain, "Bearer "+token(t, iss, 2, model.RoleUser))
	assert.ErrorIs(t, err, service.ErrForbidden)
	assert.False(t, called)

	_, called, err = run(chain, "Bearer "+token(t, iss, 1, model.RoleAdmin))
	require.NoError(t, err)
	assert.True(t, called)

	_, _, err = run(m.RequireAdmin, "")
	assert.ErrorIs(t, err, service.ErrUnauthorized)
}
