package server

import (
	"context"
	"log/slog"
	"net/http"

	"bookstore/internal/handler"
	"bookstore/internal/middleware"
	"bookstore/internal/service"
	"bookstore/internal/validation"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// Services are the dependencies the HTTP layer is built from.
type Services struct {
	Auth        service.AuthService
	Books       service.BookService
	Orders      service.OrderService
	Payments    service.PaymentService
	Entitlement service.EntitlementService
	Gifts       service.GiftService
}

type Server struct {
	echo           *echo.Echo
	auth           service.AuthService
	authHandler    *handler.AuthHandler
	bookHandler    *handler.BookHandler
	orderHandler   *handler.OrderHandler
	contentHandler *handler.ContentHandler
	giftHandler    *handler.GiftHandler
	paymentHandler *handler.PaymentHandler
}

func NewServer(svc Services, log *slog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validation.New()
	e.HTTPErrorHandler = handler.NewErrorHandler(log)

	e.Use(echomw.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.CORS())

	s := &Server{
		echo:           e,
		auth:           svc.Auth,
		authHandler:    handler.NewAuthHandler(svc.Auth),
		bookHandler:    handler.NewBookHandler(svc.Books),
		orderHandler:   handler.NewOrderHandler(svc.Orders, svc.Payments),
		contentHandler: handler.NewContentHandler(svc.Entitlement),
		giftHandler:    handler.NewGiftHandler(svc.Gifts),
		paymentHandler: handler.NewPaymentHandler(svc.Payments),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.echo.GET("/health", health)

	api := s.echo.Group("/api")
	api.GET("/health", health)

	// -------- public --------
	api.POST("/auth/register", s.authHandler.Register)
	api.POST("/auth/login", s.authHandler.Login)
	api.GET("/books", s.bookHandler.List)
	api.GET("/books/:id", s.bookHandler.Get)

	// -------- paypal callbacks / webhooks --------
	payments := api.Group("/payments/paypal")
	payments.GET("/success", s.paymentHandler.PaypalSuccess)
	payments.POST("/webhook", s.paymentHandler.PaypalWebhook)

	// -------- authenticated --------
	authed := api.Group("", middleware.Auth(s.auth))
	authed.POST("/orders", s.orderHandler.Create)
	authed.GET("/orders", s.orderHandler.List)
	authed.GET("/orders/:id", s.orderHandler.Get)

	authed.GET("/books/:id/content", s.contentHandler.Content)
	authed.GET("/books/:id/summary", s.contentHandler.Summary)
	authed.GET("/library", s.contentHandler.Library)

	authed.GET("/gifts", s.giftHandler.Received)
	authed.POST("/gifts/claim", s.giftHandler.ClaimAll)
	authed.POST("/gifts/redeem", s.giftHandler.Redeem)
	authed.POST("/gifts/:id/claim", s.giftHandler.Claim)

	// -------- admin --------
	admin := api.Group("/admin", middleware.Auth(s.auth), middleware.RequireAdmin())
	admin.POST("/books", s.bookHandler.Create)
	admin.PUT("/books/:id", s.bookHandler.Update)
	admin.DELETE("/books/:id", s.bookHandler.Delete)
	admin.PUT("/books/:id/content", s.bookHandler.SetContent)
	admin.PUT("/books/:id/summary", s.bookHandler.SetSummary)
}

func health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// ServeHTTP lets tests drive the router without a listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
