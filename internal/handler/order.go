package handler

import (
	"net/http"

	"bookstore/internal/dto"
	"bookstore/internal/service"

	"github.com/labstack/echo/v4"
)

const headerIdempotencyKey = "Idempotency-Key"

type OrderHandler struct {
	orderService   service.OrderService
	paymentService service.PaymentService
}

func NewOrderHandler(orderService service.OrderService, paymentService service.PaymentService) *OrderHandler {
	return &OrderHandler{
		orderService:   orderService,
		paymentService: paymentService,
	}
}

func (h *OrderHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := identity(c)
	if err != nil {
		return err
	}

	var req dto.CreateOrderRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	req.IdempotencyKey = c.Request().Header.Get(headerIdempotencyKey)

	order, err := h.orderService.Create(ctx, user, &req)
	if err != nil {
		return err
	}

	if order.Replayed {
		payment, err := h.paymentService.Resume(ctx, order.Order)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, &dto.CreateOrderResponse{
			Order:   order,
			Payment: payment,
		})
	}

	payment, err := h.paymentService.Start(ctx, order.Order, req.PaymentNonce)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, &dto.CreateOrderResponse{
		Order:   order,
		Payment: payment,
	})
}

func (h *OrderHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := identity(c)
	if err != nil {
		return err
	}
	orderID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	order, err := h.orderService.Get(ctx, user, orderID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := identity(c)
	if err != nil {
		return err
	}

	orders, err := h.orderService.List(ctx, user)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, orders)
}
