// Package api serves the dashboard: a CORS-permissive proxy in front of the table
// API plus static file serving for the dashboard assets and exported artifacts.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/amionai/sourcecorr/internal/api/middleware"
)

const defaultUpstreamTimeout = 30 * time.Second

// Proxy forwards dashboard calls to the upstream table API, injecting the API key
// server-side so the key never ships to the browser.
type Proxy struct {
	upstreamBaseURL string
	apiKey          string
	httpClient      *http.Client
}

// NewProxy creates a proxy in front of the given upstream host.
func NewProxy(upstreamBaseURL, apiKey string, timeout time.Duration) *Proxy {
	if timeout == 0 {
		timeout = defaultUpstreamTimeout
	}
	return &Proxy{
		upstreamBaseURL: strings.TrimRight(upstreamBaseURL, "/"),
		apiKey:          apiKey,
		httpClient:      &http.Client{Timeout: timeout},
	}
}

// Forward relays one POST to the upstream and echoes the upstream status and body
// back verbatim, success or not. The upstream routes require a trailing slash;
// browsers tend to drop it, so it is restored here.
func (p *Proxy) Forward(w http.ResponseWriter, r *http.Request) {
	operation := strings.TrimPrefix(r.URL.Path, "/api")
	if !strings.HasSuffix(operation, "/") {
		operation += "/"
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		respondError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, p.upstreamBaseURL+operation, bytes.NewReader(body))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to build upstream request")
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		slog.Error("Upstream request failed",
			"operation", operation,
			"error", err,
			"request_id", middleware.RequestIDFromContext(r.Context()))
		respondError(w, http.StatusBadGateway, "upstream unreachable")
		return
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("failed to close response body", "error", err)
		}
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		slog.Error("Failed to relay upstream response", "operation", operation, "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
