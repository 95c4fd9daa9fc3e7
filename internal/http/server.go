package http

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/bornholm/go-x/slogx"
	"github.com/pkg/errors"
)

type Server struct {
	opts *Options
}

func NewServer(funcs ...OptionFunc) *Server {
	opts := NewOptions(funcs...)

	return &Server{opts: opts}
}

func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()

	baseURL := strings.TrimSuffix(s.opts.BaseURL, "/")

	mount := func(prefix string, handler http.Handler) {
		pattern := baseURL + prefix
		mux.Handle(pattern, http.StripPrefix(strings.TrimSuffix(pattern, "/"), handler))
	}

	for prefix, handler := range s.opts.Mounts {
		mount(prefix, handler)
	}

	for prefix, handler := range s.opts.ProtectedMounts {
		if s.opts.BasicAuth != nil {
			handler = s.basicAuth(handler)
		}

		mount(prefix, handler)
	}

	server := &http.Server{
		Addr:    s.opts.Address,
		Handler: mux,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "could not shutdown server", slogx.Error(errors.WithStack(err)))
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.WithStack(err)
	}

	return nil
}
