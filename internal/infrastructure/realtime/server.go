package realtime

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// NewRouter serves the websocket endpoint and a liveness probe. It runs on its own
// listener because the Fiber adaptor cannot hijack connections.
func NewRouter(hub *Hub, allowedOrigin string) http.Handler {
	origins := []string{"*"}
	if allowedOrigin != "" {
		origins = []string{allowedOrigin}
	}
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	r.Get("/socket", hub.ServeWS)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":    "OK",
			"clients":   hub.ClientCount(),
			"timestamp": time.Now().UTC(),
		})
	})
	return r
}

// NewServer wraps NewRouter in an http.Server listening on addr.
func NewServer(addr string, hub *Hub, allowedOrigin string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           NewRouter(hub, allowedOrigin),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
