// Package pushrelay assembles the relay's HTTP surface around the
// dispatch subsystem.
package pushrelay

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/tinywideclouds/go-microservice-base/pkg/microservice"
	"github.com/tinywideclouds/go-microservice-base/pkg/middleware"

	"github.com/noticetake/push-relay/internal/api"
	"github.com/noticetake/push-relay/pkg/push"
	"github.com/noticetake/push-relay/pushrelay/config"
)

type Wrapper struct {
	*microservice.BaseServer
	logger *slog.Logger
}

// New assembles the service: base server, CORS, and the push routes.
func New(
	cfg *config.Config,
	dispatcher push.Dispatcher,
	tokenStore push.FallbackTokenStore,
	logger *slog.Logger,
) (*Wrapper, error) {

	baseServer := microservice.NewBaseServer(logger, cfg.ListenAddr)

	pushAPI := api.NewPushAPI(dispatcher, tokenStore, logger)

	mux := baseServer.Mux()
	corsMiddleware := middleware.NewCorsMiddleware(cfg.CorsConfig, logger)

	handle := func(pattern string, handlerFunc http.HandlerFunc) {
		mux.Handle(pattern, corsMiddleware(handlerFunc))
	}

	handle("POST /push/send", pushAPI.SendFCM)
	handle("POST /hms/send", pushAPI.SendHMS)
	handle("PUT /hms/token", pushAPI.RegisterFallbackToken)

	// CORS preflight for the whole surface.
	mux.Handle("OPTIONS /", corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})))

	return &Wrapper{
		BaseServer: baseServer,
		logger:     logger,
	}, nil
}

func (w *Wrapper) Start(_ context.Context) error {
	w.SetReady(true)
	w.logger.Info("Service is now ready.")
	return w.BaseServer.Start()
}

func (w *Wrapper) Shutdown(ctx context.Context) error {
	w.logger.Info("Shutting down service...")
	if err := w.BaseServer.Shutdown(ctx); err != nil {
		w.logger.Error("HTTP server shutdown failed.", "err", err)
		return err
	}
	w.logger.Info("Service shutdown complete.")
	return nil
}
