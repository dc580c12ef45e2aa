package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"swipe-match-backend/internal/config"
	"swipe-match-backend/internal/handlers"
	"swipe-match-backend/internal/services"
	"swipe-match-backend/internal/storage"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg)
		},
	}
}

func runServer(ctx context.Context, cfg *config.Config) error {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()
	log.Info().Str("driver", cfg.Database.Driver).Msg("Database connection established")

	objects, err := openObjectStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open object storage: %w", err)
	}

	// Notifiers
	wsHub := services.NewWSHub()
	notifiers := services.MultiNotifier{wsHub}
	if cfg.APNS.Enabled() {
		apns, err := services.NewAPNSNotifier(services.APNSConfig{
			KeyFile:    cfg.APNS.KeyFile,
			KeyID:      cfg.APNS.KeyID,
			TeamID:     cfg.APNS.TeamID,
			Topic:      cfg.APNS.Topic,
			Production: cfg.APNS.Production,
		})
		if err != nil {
			return err
		}
		notifiers = append(notifiers, apns)
		log.Info().Bool("production", cfg.APNS.Production).Msg("APNs push enabled")
	}

	// Initialize services
	userService := services.NewUserService(store.Users(), cfg.JWT.Secret, cfg.JWT.TTL)
	photoService := services.NewPhotoService(store.Photos(), objects, cfg.Photos.MaxBytes).
		WithPresignedURLs(cfg.Photos.PresignTTL)
	feedService := services.NewFeedService(store, retryPolicy(cfg.Feed)).
		WithPhotoURLs(photoService)
	matchService := services.NewMatchService(store, notifiers, retryPolicy(cfg.Decisions)).
		WithPhotoURLs(photoService)

	h := handlers.Handlers{
		User:      handlers.NewUserHandler(userService, photoService),
		Photo:     handlers.NewPhotoHandler(photoService),
		Feed:      handlers.NewFeedHandler(feedService),
		Match:     handlers.NewMatchHandler(matchService),
		WebSocket: handlers.NewWebSocketHandler(wsHub, userService),
		Health:    handlers.NewHealthHandler(store),
	}
	if mem, ok := objects.(*storage.MemoryStore); ok {
		h.Object = handlers.NewObjectHandler(mem)
	}

	router := handlers.NewRouter(h, userService, handlers.RouterOptions{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RequestLogging: zerolog.GlobalLevel() <= zerolog.DebugLevel,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	}

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	wsHub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
	return nil
}

func openObjectStore(ctx context.Context, cfg *config.Config) (storage.ObjectStore, error) {
	if cfg.AWS.S3Bucket == "" {
		log.Warn().Msg("No S3 bucket configured; photos are kept in memory")
		return storage.NewMemoryStore(memoryPhotoBaseURL(cfg)), nil
	}

	return storage.NewS3Store(ctx, storage.S3Options{
		Bucket:        cfg.AWS.S3Bucket,
		Region:        cfg.AWS.Region,
		Endpoint:      cfg.AWS.Endpoint,
		AccessKey:     cfg.AWS.AccessKey,
		SecretKey:     cfg.AWS.SecretKey,
		PublicBaseURL: cfg.AWS.PublicBaseURL,
		UsePathStyle:  cfg.AWS.UsePathStyle,
	})
}

// memoryPhotoBaseURL is where the server itself serves in-memory photos
func memoryPhotoBaseURL(cfg *config.Config) string {
	if cfg.AWS.PublicBaseURL != "" {
		return strings.TrimSuffix(cfg.AWS.PublicBaseURL, "/")
	}
	host := cfg.Server.Host
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d/photos", host, cfg.Server.Port)
}
