package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/notecraft/notecraft/internal/auth"
	"github.com/notecraft/notecraft/internal/config"
	"github.com/notecraft/notecraft/internal/gemini"
	"github.com/notecraft/notecraft/internal/generation"
	"github.com/notecraft/notecraft/internal/handlers"
	"github.com/notecraft/notecraft/internal/images"
	"github.com/notecraft/notecraft/internal/storage"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		port       string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web interface",
		Long: `Starts the Notecraft web interface.

Upload a product photo, review what Gemini recognized, then generate the
post copy and cover image.`,
		Example: `  # Start server on default port 8888
  notecraft serve

  # Start server on custom port with a settings file
  notecraft serve --port 3000 --config notecraft.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				configPath = os.Getenv("NOTECRAFT_CONFIG")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Addr = ":" + strings.TrimPrefix(port, ":")
			}

			level, _ := cfg.SlogLevel()
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

			factory, err := gemini.NewFactory(cmd.Context(), gemini.Options{
				APIKey:     cfg.GeminiAPIKey,
				ProModel:   cfg.Models.Pro,
				ImageModel: cfg.Models.Image,
				FlashModel: cfg.Models.Flash,
			})
			if err != nil {
				return err
			}
			defer factory.Close()

			if err := factory.Err(); err != nil {
				if cfg.StrictCredentials {
					return fmt.Errorf("refusing to start: %w", err)
				}
				slog.Error("Model calls will fail until the API key is configured", "err", err)
			}

			copywriter, err := factory.ByRole(cfg.CopywritingModel)
			if err != nil {
				return err
			}
			service := generation.NewService(generation.Options{
				Vision:     factory.Pro(),
				Copywriter: copywriter,
				Imager:     factory.Image(),
				Timeout:    cfg.RequestTimeout,
			})

			provider := auth.NewMemoryProvider(cfg.SessionTTL)
			for _, u := range cfg.Users {
				if err := provider.AddUser(u.Email, u.Password); err != nil {
					return fmt.Errorf("failed to add user %s: %w", u.Email, err)
				}
			}

			handler := handlers.New(handlers.Options{
				Steps:          service,
				Store:          storage.New(cfg.SessionTTL),
				Gate:           auth.NewGate(provider, cfg.SessionTTL),
				Fetcher:        images.NewFetcher(cfg.MaxUploadBytes),
				MaxUploadBytes: cfg.MaxUploadBytes,
				Ready:          factory.Err,
			})

			server := &http.Server{
				Addr:              cfg.Addr,
				Handler:           handler.Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Notecraft interface available",
					"addr", cfg.Addr,
					"url", "http://localhost"+cfg.Addr,
					"pro_model", factory.Pro().Name(),
					"image_model", factory.Image().Name(),
					"copywriting_model", copywriter.Name())
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides addr, default 8888)")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML settings file (or NOTECRAFT_CONFIG)")

	return cmd
}
