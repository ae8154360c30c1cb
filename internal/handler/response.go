package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/juhi-kothari/Pranam-app/internal/service"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func respond(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

func NewErrorResponse(code, message string) Envelope {
	return Envelope{Success: false, Error: code, Message: message}
}

var errBadBody = fmt.Errorf("%w: invalid request body", service.ErrValidation)

type errorKind struct {
	target error
	status int
	code   string
}

var errorKinds = []errorKind{
	{service.ErrValidation, http.StatusBadRequest, "validation_error"},
	{service.ErrInsufficientStock, http.StatusBadRequest, "insufficient_stock"},
	{service.ErrUnavailable, http.StatusBadRequest, "unavailable"},
	{service.ErrInvalidSignature, http.StatusBadRequest, "invalid_signature"},
	{service.ErrNotCancellable, http.StatusBadRequest, "not_cancellable"},
	{service.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{service.ErrForbidden, http.StatusForbidden, "forbidden"},
	{service.ErrNotFound, http.StatusNotFound, "not_found"},
	{service.ErrAlreadySubscribed, http.StatusConflict, "already_subscribed"},
	{service.ErrAlreadyBookmarked, http.StatusConflict, "already_bookmarked"},
	{service.ErrGateway, http.StatusBadGateway, "payment_gateway_error"},
	{service.ErrStorageDisabled, http.StatusServiceUnavailable, "storage_disabled"},
}

// ErrorHandler renders service errors and echo errors as an Envelope.
// Unexpected errors are logged and their detail is hidden in production.
func ErrorHandler(production bool, log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, body := classify(err, production)
		if status >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Int("status", status),
				zap.Error(err))
		}
		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = c.JSON(status, body)
		}
		if werr != nil {
			log.Warn("write error response", zap.Error(werr))
		}
	}
}

func classify(err error, production bool) (int, Envelope) {
	for _, k := range errorKinds {
		if errors.Is(err, k.target) {
			return k.status, NewErrorResponse(k.code, err.Error())
		}
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok && m != "" {
			msg = m
		}
		code := "http_error"
		switch he.Code {
		case http.StatusNotFound:
			code = "not_found"
		case http.StatusMethodNotAllowed:
			code = "method_not_allowed"
		case http.StatusTooManyRequests:
			code = "rate_limited"
		case http.StatusRequestEntityTooLarge:
			code = "payload_too_large"
		}
		return he.Code, NewErrorResponse(code, msg)
	}
	msg := "Internal server error"
	if !production {
		msg = err.Error()
	}
	return http.StatusInternalServerError, NewErrorResponse("internal", msg)
}

func paramID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid %s", service.ErrValidation, name)
	}
	return id, nil
}

func queryInt(c echo.Context, name string) int {
	n, _ := strconv.Atoi(c.QueryParam(name))
	return n
}
