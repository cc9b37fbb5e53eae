package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/CVSRohit/PodcastGen/handlers"
	"github.com/CVSRohit/PodcastGen/routes"
	"github.com/CVSRohit/PodcastGen/storage"
)

const (
	shutdownTimeout = 10 * time.Second
	evictInterval   = 10 * time.Minute
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API.

Endpoints:
  GET  /               create or return the session
  POST /credentials    store the caller's API key
  POST /extract        multipart "file" (PDF) or "url"
  POST /dialogue       generate a dialogue from the extracted text
  GET  /dialogue       current dialogue (JSON, or text/plain for editing)
  PUT  /dialogue       replace the dialogue with edited "Role: content" lines
  POST /podcast        synthesize the dialogue
  GET  /podcast/audio  download the last podcast
  GET  /podcast/ws     synthesize with progress over a websocket`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		return serve(cmd.Context(), a)
	},
}

func serve(ctx context.Context, a *app) error {
	if !a.cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	h := handlers.New(a.services, storage.NewStorage(), a.cfg.Server.MaxUploadMB<<20, a.logger.Named("http"))
	routes.RegisterRoutes(r, a.cfg.Server, h, a.logger.Named("http"))
	go evictIdle(ctx, h, a.cfg.Server.SessionTTL)

	srv := &http.Server{
		Addr:    a.cfg.Server.Addr(),
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func evictIdle(ctx context.Context, h *handlers.Handlers, ttl time.Duration) {
	ticker := time.NewTicker(evictInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.EvictIdle(ttl)
		}
	}
}
