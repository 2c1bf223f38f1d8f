package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"catalogservice/internal/config"

	"go.uber.org/zap"
)

// Application holds all the components and manages the application lifecycle
type Application struct {
	ctx       context.Context
	cancel    context.CancelFunc
	container *Container
}

// NewApplication creates and fully initializes a new Application instance
func NewApplication(ctx context.Context) (*Application, error) {
	appCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)

	app := &Application{
		ctx:    appCtx,
		cancel: cancel,
	}

	container, err := NewContainer(app.ctx)
	if err != nil {
		cancel()
		return nil, err
	}
	app.container = container

	app.container.Logger().Info("Application initialized successfully")
	return app, nil
}

// Run starts the stock pipeline and the HTTP server and blocks until a
// shutdown signal arrives or the server fails.
func (app *Application) Run() error {
	logger := app.container.Logger()
	srv := app.container.HTTPServer()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.container.StockConsumer().Start(app.ctx); err != nil {
			logger.Error("❌ Stock update consumer failed", zap.Error(err))
		}
	}()

	if feed := app.container.FeedConsumer(); feed != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := feed.Start(app.ctx); err != nil {
				logger.Error("❌ Stock feed consumer failed", zap.Error(err))
			}
		}()
	}

	srvErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("address", srv.Addr))
		srvErr <- srv.ListenAndServe()
	}()

	var err error
	select {
	case httpErr := <-srvErr:
		if !errors.Is(httpErr, http.ErrServerClosed) {
			logger.Error("HTTP server ListenAndServe error", zap.Error(httpErr))
			err = httpErr
		}
		app.cancel()
	case <-app.ctx.Done():
		logger.Info("Shutdown signal received, initiating graceful shutdown...")
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancelShutdown()
	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Error("HTTP server graceful shutdown failed", zap.Error(shutdownErr))
		err = errors.Join(err, shutdownErr)
	} else {
		logger.Info("HTTP server shutdown complete.")
	}

	// The consumer finishes its in-flight update before returning.
	wg.Wait()
	return err
}

// Shutdown gracefully shuts down all application components
func (app *Application) Shutdown() error {
	if app.container != nil {
		app.container.Logger().Info("Starting application shutdown...")
	}

	if app.cancel != nil {
		app.cancel()
	}

	if app.container == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	return app.container.Shutdown(ctx)
}
