package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mcoot/trucogame/internal/api"
	"github.com/mcoot/trucogame/internal/config"
	"github.com/mcoot/trucogame/internal/events/natsbus"
	"github.com/mcoot/trucogame/internal/factory"
	"github.com/mcoot/trucogame/internal/web"
)

func main() {
	// Load configuration from TRUCO_CONFIG (optional) and TRUCO_* env vars
	settings, err := config.Load(os.Getenv("TRUCO_CONFIG"))
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	level, _ := settings.LogLevel()

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// Create application factory
	app, err := factory.New(factory.ConfigFromSettings(settings, logger))
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Attach the NATS bus when configured
	var natsClient *natsbus.Client
	var control *natsbus.ControlSubscriber
	if settings.NATS.URL != "" {
		natsClient, err = natsbus.NewClient(natsbus.Config{
			URL:           settings.NATS.URL,
			MaxReconnects: settings.NATS.MaxReconnects,
			ReconnectWait: settings.NATS.ReconnectWait,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to NATS", slog.String("error", err.Error()))
			os.Exit(1)
		}

		publisher := natsbus.NewPublisher(natsClient, settings.NATS.SubjectPrefix, logger)
		app.GameController.AddPublisher(publisher)
		app.GameController.OnRoomClosed(publisher.RoomClosed)

		control = natsbus.NewControlSubscriber(natsClient, settings.NATS.SubjectPrefix, app.GameController, logger)
		if err := control.Start(); err != nil {
			logger.Error("failed to subscribe to control subject", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("nats bus attached", slog.String("url", settings.NATS.URL))
	}

	// Create API router
	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		AuthService:    app.AuthService,
		GameController: app.GameController,
		Storage:        app.Storage,
	})

	// Create realtime router (websocket + SSE)
	webRouter := web.NewRouter(web.RouterConfig{
		Logger:         logger,
		AuthService:    app.AuthService,
		GameController: app.GameController,
		HubManager:     app.HubManager,
		WSManager:      app.WSManager,
	})

	// Combine routers
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/", webRouter)

	// Create server
	serverConfig := api.ServerConfig{
		Host:            settings.Server.Host,
		Port:            settings.Server.Port,
		ReadTimeout:     settings.Server.ReadTimeout,
		WriteTimeout:    settings.Server.WriteTimeout,
		IdleTimeout:     settings.Server.IdleTimeout,
		ShutdownTimeout: settings.Server.ShutdownTimeout,
	}
	server := api.NewServer(mux, serverConfig, logger)
	server.RegisterOnShutdown(app.Shutdown)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Sweep idle rooms and expired sessions in the background
	go app.RunMaintenance(ctx, settings.Game.SweepInterval)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	// Wait for shutdown or error
	exitCode := 0
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			exitCode = 1
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			exitCode = 1
		}
	}

	if control != nil {
		if err := control.Stop(); err != nil {
			logger.Warn("nats unsubscribe failed", slog.String("error", err.Error()))
		}
	}
	if natsClient != nil {
		if err := natsClient.Close(); err != nil {
			logger.Warn("nats close failed", slog.String("error", err.Error()))
		}
	}
	if closer, ok := app.Storage.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Warn("storage close failed", slog.String("error", err.Error()))
		}
	}

	cancel()
	logger.Info("server stopped")
	os.Exit(exitCode)
}
