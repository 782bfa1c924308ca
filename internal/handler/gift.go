package handler

import (
	"net/http"

	"bookstore/internal/dto"
	"bookstore/internal/service"

	"github.com/labstack/echo/v4"
)

type GiftHandler struct {
	giftService service.GiftService
}

func NewGiftHandler(giftService service.GiftService) *GiftHandler {
	return &GiftHandler{
		giftService: giftService,
	}
}

func (h *GiftHandler) Received(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := identity(c)
	if err != nil {
		return err
	}

	gifts, err := h.giftService.Received(ctx, user)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, gifts)
}

func (h *GiftHandler) ClaimAll(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := identity(c)
	if err != nil {
		return err
	}

	n, err := h.giftService.ClaimAll(ctx, user)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &dto.ClaimAllResponse{Claimed: n})
}

func (h *GiftHandler) Claim(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := identity(c)
	if err != nil {
		return err
	}
	giftID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	gift, err := h.giftService.Claim(ctx, user, giftID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, gift)
}

func (h *GiftHandler) Redeem(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := identity(c)
	if err != nil {
		return err
	}

	var req dto.ClaimRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	gift, err := h.giftService.Redeem(ctx, user, req.Token)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, gift)
}
