package setup

import (
	"context"
	"encoding/json"
	netHTTP "net/http"

	"github.com/osiro/laudo/internal/config"
	"github.com/osiro/laudo/internal/http"
	"github.com/osiro/laudo/internal/http/handler/api"
	"github.com/osiro/laudo/internal/http/handler/metrics"
	"github.com/osiro/laudo/internal/http/handler/public"
	"github.com/osiro/laudo/internal/http/middleware/ratelimit"
	"github.com/pkg/errors"
)

func NewHTTPServerFromConfig(ctx context.Context, conf *config.Config) (*http.Server, error) {
	renderManager, err := getRenderManagerFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "could not configure render manager from config")
	}

	linkManager, err := getPublicLinkManagerFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "could not configure public link manager from config")
	}

	provider, err := getDocumentProviderFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "could not configure document provider from config")
	}

	apiHandler := api.NewHandler(renderManager, linkManager, conf.HTTP.PublicBaseURL)
	publicHandler := public.NewHandler(renderManager, linkManager, provider, provider)

	var wrappedPublicHandler netHTTP.Handler = publicHandler
	if conf.HTTP.RateLimit.Enabled {
		rateLimitMiddleware := ratelimit.Middleware(
			ratelimit.WithTrustHeaders(conf.HTTP.RateLimit.TrustHeaders),
			ratelimit.WithLimit(conf.HTTP.RateLimit.Interval, conf.HTTP.RateLimit.MaxBurst),
		)

		wrappedPublicHandler = rateLimitMiddleware(publicHandler)
	}

	options := []http.OptionFunc{
		http.WithAddress(conf.HTTP.Address),
		http.WithBaseURL(conf.HTTP.BaseURL),
		http.WithMount("/health", netHTTP.HandlerFunc(handleHealth)),
		http.WithMount("/public/", wrappedPublicHandler),
		http.WithProtectedMount("/api/v1/", apiHandler),
		http.WithProtectedMount("/metrics/", metrics.NewHandler()),
	}

	if conf.HTTP.Auth.Admin.Password != "" {
		options = append(options, http.WithBasicAuth(conf.HTTP.Auth.Admin.Username, conf.HTTP.Auth.Admin.Password))
	}

	server := http.NewServer(options...)

	return server, nil
}

func handleHealth(w netHTTP.ResponseWriter, r *netHTTP.Request) {
	w.Header().Set("Content-Type", "application/json")

	json.NewEncoder(w).Encode(struct {
		Status string `json:"status"`
	}{Status: "ok"})
}
