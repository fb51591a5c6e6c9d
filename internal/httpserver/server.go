package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

const readHeaderTimeout = 10 * time.Second

// NewRouter returns a router with the request id, recover and access log
// middlewares installed.
func NewRouter(log zerolog.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(RequestID, Recover(log), Logging(log))
	return r
}

// New creates an HTTP server on port and binds it to the fx lifecycle.
func New(lc fx.Lifecycle, port int, handler http.Handler, log zerolog.Logger) *http.Server {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	lc.Append(
		fx.Hook{
			OnStart: func(ctx context.Context) error {
				ln, err := net.Listen("tcp", srv.Addr)
				if err != nil {
					return fmt.Errorf("unable to listen on %s: %w", srv.Addr, err)
				}
				log.Info().Str("addr", srv.Addr).Msg("starting http server...")
				go func() {
					if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
						log.Error().Err(err).Msg("http server stopped")
					}
				}()
				return nil
			},
			OnStop: func(ctx context.Context) error {
				log.Info().Msg("stopping http server...")
				return srv.Shutdown(ctx)
			},
		},
	)

	return srv
}
