package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/juhi-kothari/Pranam-app/internal/model"
)

// Actor is an authenticated caller.
type Actor struct {
	UserID uint64
	Role   model.Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == model.RoleAdmin
}

func (a Actor) canAccess(ownerID uint64) bool {
	return a.IsAdmin() || a.UserID == ownerID
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

type Page[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

func newPage[T any](items []T, page, limit int, total int64) *Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return &Page[T]{
		Items:      items,
		Pagination: Pagination{Page: page, Limit: limit, Total: total, Pages: pages},
	}
}

// normalizePage clamps page to >=1 and limit to [1, max], applying def when
// limit is not positive. It returns the offset as well.
func normalizePage(page, limit, def, max int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	return page, limit, (page - 1) * limit
}

// randomSuffix returns n hex characters from a fresh random uuid (n <= 32).
func randomSuffix(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}

func newOrderNumber(now time.Time) string {
	return "ORD" + strconv.FormatInt(now.UnixMilli(), 10) + strings.ToUpper(randomSuffix(5))
}

func newConversationID(now time.Time) string {
	return "chat_" + strconv.FormatInt(now.UnixMilli(), 10) + "_" + randomSuffix(9)
}
