package router

import (
	"net/http"
	"strings"

	"product-catalog/internal/handler"
	"product-catalog/internal/metrics"
	"product-catalog/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// New creates the HTTP router with all routes and middleware configured.
// m may be nil, in which case no metrics are recorded or exposed.
func New(productHandler *handler.ProductHandler, m *metrics.Metrics, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Order: RequestID -> Recovery -> Logging -> CORS -> Metrics
	r.Use(chimw.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)
	if m != nil {
		r.Use(m.Middleware(routePattern))
	}

	r.NotFound(handler.NotFound(logger))

	r.Get("/", handler.Info)
	r.Get("/health", handler.Health)

	r.Route("/products", func(r chi.Router) {
		r.Get("/", productHandler.List)
		r.Post("/", productHandler.Create)
	})

	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	return r
}

// routePattern reports the matched chi pattern so label cardinality stays bounded.
// A trailing slash is dropped, so "/products" and "/products/" share a label.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			if pattern != "/" {
				pattern = strings.TrimSuffix(pattern, "/")
			}
			return pattern
		}
	}
	return "unmatched"
}
