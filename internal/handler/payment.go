package handler

import (
	"io"
	"net/http"

	"bookstore/internal/service"

	"github.com/labstack/echo/v4"
)

const maxWebhookBody = 1 << 20

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// PaypalSuccess is the return url paypal redirects the buyer to after approval.
func (h *PaymentHandler) PaypalSuccess(c echo.Context) error {
	ctx := c.Request().Context()

	paypalOrderID := c.QueryParam("token")
	if paypalOrderID == "" {
		return badRequest("missing order token")
	}

	if _, err := h.paymentService.CapturePaypal(ctx, paypalOrderID); err != nil {
		return err
	}

	html := `
	<!DOCTYPE html>
	<html>
	<head>
		<meta charset="utf-8">
		<title>Payment Received</title>
		<style>
			body {
				font-family: Arial, sans-serif;
				text-align: center;
				margin-top: 80px;
			}
		</style>
	</head>
	<body>
		<h2>Payment approved</h2>
		<p>Your order is paid. Purchased and rented books are now in your library.</p>
	</body>
	</html>
	`

	return c.HTML(http.StatusOK, html)
}

func (h *PaymentHandler) PaypalWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return badRequest("unreadable body")
	}

	if err := h.paymentService.HandleWebhook(ctx, c.Request().Header, body); err != nil {
		return err
	}

	return c.NoContent(http.StatusOK)
}
