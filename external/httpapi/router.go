package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

const (
	maxRequestBodyBytes = 4 << 20
	readHeaderTimeout   = 10 * time.Second
)

func NewRouter(svc Summarizer, metricsHandler http.Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger)
	r.Use(chimw.Recoverer)

	h := NewSummaryHandler(svc)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", health)
		r.With(maxBodySize(maxRequestBodyBytes)).Post("/sumup", h.Sumup)
	})
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	return r
}

func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

func health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
