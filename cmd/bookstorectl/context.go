package main

import (
	"fmt"
	"log/slog"

	"bookstore/internal/app"
	"bookstore/internal/config"
	"bookstore/internal/logger"
)

// commandContext lazily builds the application the first time a command needs it.
type commandContext struct {
	app *app.App
}

func newCommandContext() *commandContext {
	return &commandContext{}
}

func (c *commandContext) ensureApp() (*app.App, error) {
	if c.app != nil {
		return c.app, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	// keep stdout for tables
	cfg.Log.Format = "text"
	log := logger.New(cfg.Log).With(slog.String("component", "bookstorectl"))

	a, err := app.New(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	c.app = a
	return a, nil
}

func (c *commandContext) withApp(fn func(a *app.App) error) error {
	a, err := c.ensureApp()
	if err != nil {
		return err
	}
	return fn(a)
}

func (c *commandContext) close() error {
	if c.app == nil {
		return nil
	}
	err := c.app.Close()
	c.app = nil
	return err
}
