package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"bookstore/internal/client"
	"bookstore/internal/service"
	"bookstore/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type errorBody struct {
	Message string `json:"message"`
	BookID  uint   `json:"book_id,omitempty"`
}

// NewErrorHandler maps service errors to status codes. Anything it does not
// recognise is logged and reported as a bare 500.
func NewErrorHandler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := translate(err)
		if status >= http.StatusInternalServerError {
			log.Error("request failed",
				"err", err,
				"method", c.Request().Method,
				"path", c.Path(),
				"req_id", c.Response().Header().Get(echo.HeaderXRequestID),
			)
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = c.JSON(status, body)
		}
		if werr != nil {
			log.Error("write error response", "err", werr)
		}
	}
}

func translate(err error) (int, errorBody) {
	var (
		httpErr   *echo.HTTPError
		denied    *service.AccessDeniedError
		itemErr   *service.ItemError
		validErrs validator.ValidationErrors
	)

	switch {
	case errors.As(err, &httpErr):
		msg := http.StatusText(httpErr.Code)
		if m, ok := httpErr.Message.(string); ok && m != "" {
			msg = m
		}
		return httpErr.Code, errorBody{Message: msg}
	case errors.As(err, &validErrs):
		return http.StatusBadRequest, errorBody{Message: validation.Message(err)}
	case errors.As(err, &denied):
		return http.StatusForbidden, errorBody{Message: denied.Reason}
	}

	body := errorBody{Message: err.Error()}
	if errors.As(err, &itemErr) {
		body.BookID = itemErr.BookID
		body.Message = itemErr.Err.Error()
	}

	switch {
	case errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, service.ErrInvalidItem),
		errors.Is(err, service.ErrInsufficientStock):
		return http.StatusBadRequest, body
	case errors.Is(err, service.ErrBookNotFound),
		errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrGiftNotFound),
		errors.Is(err, service.ErrContentUnavailable):
		return http.StatusNotFound, body
	case errors.Is(err, service.ErrGiftClaimed),
		errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict, body
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized, body
	case errors.Is(err, client.ErrWebhookSignature):
		return http.StatusBadRequest, errorBody{Message: "invalid webhook signature"}
	case errors.Is(err, service.ErrPaymentFailed):
		return http.StatusBadGateway, errorBody{Message: service.ErrPaymentFailed.Error()}
	}

	return http.StatusInternalServerError, errorBody{Message: "internal server error"}
}

func badRequest(format string, args ...any) error {
	return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf(format, args...))
}
