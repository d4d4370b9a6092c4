package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/amionai/sourcecorr/internal/api/middleware"
)

// maxRequestBodyBytes caps proxied request bodies. Dashboard queries are a few
// hundred bytes; anything near this limit is not a dashboard.
const maxRequestBodyBytes = 1 << 20

// NewRouter builds the dashboard handler: health, the /api proxy, and static file
// serving for everything else.
func NewRouter(proxy *Proxy, staticDir string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.MaxBody(maxRequestBodyBytes))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "x-api-key"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// The dashboard only ever POSTs to the API; anything else under /api is a
	// client bug and must not fall through to the static file server.
	r.Handle("/api/*", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			proxy.Forward(w, r)
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		default:
			respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	}))

	r.Get("/*", http.FileServer(http.Dir(staticDir)).ServeHTTP)

	return r
}
