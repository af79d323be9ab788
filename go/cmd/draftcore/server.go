package main

import (
	"fmt"
	"net/http"

	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mcdev12/draftcore/go/internal/draft/hub"
)

// setupServer wires the Subscription Hub's WebSocket endpoint behind CORS
// and a health check, grounded on the teacher's internal/cmd/server.go
// (CORS middleware + h2c.NewHandler), generalized from that file's
// Connect-RPC service registrations to this module's single WebSocket
// surface (§6 external interfaces).
func setupServer(port string, h *hub.Hub) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws/draft", h.HandleConnection)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error().Err(err).Msg("failed to write health check response")
		}
	})

	c := cors.New(cors.Options{
		AllowedMethods: []string{http.MethodHead, http.MethodGet, http.MethodPost},
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
	})
	handler := c.Handler(mux)

	return &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: h2c.NewHandler(handler, &http2.Server{}),
	}
}
