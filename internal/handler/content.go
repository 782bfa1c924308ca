package handler

import (
	"net/http"

	"bookstore/internal/service"

	"github.com/labstack/echo/v4"
)

// ContentHandler serves entitlement guarded reads.
type ContentHandler struct {
	entitlementService service.EntitlementService
}

func NewContentHandler(entitlementService service.EntitlementService) *ContentHandler {
	return &ContentHandler{
		entitlementService: entitlementService,
	}
}

func (h *ContentHandler) Content(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := identity(c)
	if err != nil {
		return err
	}
	bookID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	content, err := h.entitlementService.Content(ctx, user, bookID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, content)
}

func (h *ContentHandler) Summary(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := identity(c)
	if err != nil {
		return err
	}
	bookID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	summary, err := h.entitlementService.Summary(ctx, user, bookID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, summary)
}

func (h *ContentHandler) Library(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := identity(c)
	if err != nil {
		return err
	}

	entries, err := h.entitlementService.Library(ctx, user)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, entries)
}
