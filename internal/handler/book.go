package handler

import (
	"net/http"

	"bookstore/internal/dto"
	"bookstore/internal/service"

	"github.com/labstack/echo/v4"
)

type BookHandler struct {
	bookService service.BookService
}

func NewBookHandler(bookService service.BookService) *BookHandler {
	return &BookHandler{
		bookService: bookService,
	}
}

func (h *BookHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	books, err := h.bookService.List(ctx, queryInt(c, "limit"), queryInt(c, "offset"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, books)
}

func (h *BookHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	bookID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	book, err := h.bookService.Get(ctx, bookID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, book)
}

func (h *BookHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.BookRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	book, err := h.bookService.Create(ctx, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, book)
}

func (h *BookHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	bookID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.BookRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	book, err := h.bookService.Update(ctx, bookID, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, book)
}

func (h *BookHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	bookID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.bookService.Delete(ctx, bookID); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *BookHandler) SetContent(c echo.Context) error {
	ctx := c.Request().Context()

	bookID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.BookContentRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	book, err := h.bookService.SetContent(ctx, bookID, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, book)
}

func (h *BookHandler) SetSummary(c echo.Context) error {
	ctx := c.Request().Context()

	bookID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.BookSummaryRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	book, err := h.bookService.SetSummary(ctx, bookID, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, book)
}
