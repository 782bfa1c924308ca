package app

import (
	"fmt"
	"log/slog"

	"bookstore/internal/client"
	"bookstore/internal/config"
	"bookstore/internal/repository"
	"bookstore/internal/server"
	"bookstore/internal/service"

	"gorm.io/gorm"
)

// App holds the wired dependency graph shared by the API and the CLI.
type App struct {
	Config *config.Config
	Log    *slog.Logger
	DB     *gorm.DB

	Books  repository.BookRepository
	Users  repository.UserRepository
	Orders repository.OrderRepository
	Gifts  repository.GiftRepository

	Services   server.Services
	Reconciler service.Reconciler
}

func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	db, err := client.InitDBClient(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init db client: %w", err)
	}

	return Wire(cfg, log, db,
		client.NewPaypalClient(&cfg.Paypal),
		client.NewBraintreeClient(&cfg.BrainTree),
	), nil
}

// Wire builds repositories and services on an open database.
func Wire(
	cfg *config.Config,
	log *slog.Logger,
	db *gorm.DB,
	paypalClient client.PaypalClient,
	braintreeClient client.BraintreeClient,
) *App {
	bookRepo := repository.NewBookRepository(db)
	userRepo := repository.NewUserRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	giftRepo := repository.NewGiftRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)

	pricing := service.NewPricingCalculator(cfg.Pricing)

	return &App{
		Config: cfg,
		Log:    log,
		DB:     db,
		Books:  bookRepo,
		Users:  userRepo,
		Orders: orderRepo,
		Gifts:  giftRepo,
		Services: server.Services{
			Auth:  service.NewAuthService(userRepo, cfg.Auth.Secret, cfg.Auth.TTL, log),
			Books: service.NewBookService(bookRepo, log),
			Orders: service.NewOrderService(
				db,
				bookRepo,
				userRepo,
				orderRepo,
				giftRepo,
				pricing,
				cfg.Checkout.Timeout,
				log,
			),
			Payments: service.NewPaymentService(
				orderRepo,
				webhookEventRepo,
				paypalClient,
				braintreeClient,
				cfg.BaseURL,
				cfg.Paypal.Currency,
				log,
			),
			Entitlement: service.NewEntitlementService(bookRepo, orderRepo, giftRepo, cfg.Gift.RequireClaim),
			Gifts:       service.NewGiftService(giftRepo, log),
		},
		Reconciler: service.NewReconciler(orderRepo, log),
	}
}

func (a *App) Close() error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
