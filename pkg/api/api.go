package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/framefolio/framefolio/pkg/auth"
	"github.com/framefolio/framefolio/pkg/config"
	"github.com/framefolio/framefolio/pkg/content"
	"github.com/framefolio/framefolio/pkg/share"
)

type FramefolioAPI struct {
	config    config.FramefolioConfig
	issuer    *share.Issuer
	resolver  *share.Resolver
	galleries content.Store
	sessions  *auth.OAuthService
}

func NewFramefolioAPI(
	c config.FramefolioConfig,
	issuer *share.Issuer,
	resolver *share.Resolver,
	galleries content.Store,
	sessions *auth.OAuthService,
) *FramefolioAPI {
	return &FramefolioAPI{
		config:    c,
		issuer:    issuer,
		resolver:  resolver,
		galleries: galleries,
		sessions:  sessions,
	}
}

func RunAPI(ctx context.Context, c config.API, mux *chi.Mux) {
	log.Debug().Int("port", c.Port).Msg("Starting API")

	server := &http.Server{
		Addr:    fmt.Sprintf("0.0.0.0:%d", c.Port),
		Handler: mux,
	}

	serverCtx, serverStopCtx := context.WithCancel(context.Background())

	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Err(err).Msg("Error serving API")
			serverStopCtx()
		}
	}()

	go func() {
		<-ctx.Done() // Wait for the context to be canceled

		log.Debug().Msg("Stopping API")

		// Gracefully shutdown server
		shutdownCtx, cancel := context.WithTimeout(serverCtx, 30*time.Second)
		err := server.Shutdown(shutdownCtx)
		if err != nil {
			log.Error().Err(err).Msg("Error shutting down API")
		}

		cancel()
		<-shutdownCtx.Done()

		serverStopCtx()
	}()

	log.Debug().Msg("Waiting for graceful shutdown")
	<-serverCtx.Done()

	log.Debug().Msg("API server stopped")
}
