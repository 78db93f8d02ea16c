package http

import (
	"net/http"

	"github.com/fjod/quickbites/pkg/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type RouterConfig struct {
	Chat         *ChatHandler
	Payment      *PaymentHandler
	Metrics      *metrics.ServerMetrics
	PublicDir    string
	SecureCookie bool
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler())
	}

	r.Get("/paystack/callback", cfg.Payment.Callback)

	r.Group(func(r chi.Router) {
		r.Use(SessionMiddleware(cfg.SecureCookie))

		r.Post("/chat", cfg.Chat.Chat)
		r.Post("/paystack/init", cfg.Payment.Init)
		r.Post("/paystack/verify", cfg.Payment.Verify)

		if cfg.PublicDir != "" {
			r.With(issueSession, middleware.Compress(5)).Handle("/*", http.FileServer(http.Dir(cfg.PublicDir)))
		}
	})

	return otelhttp.NewHandler(r, "quickbites",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}))
}
