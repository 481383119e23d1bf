package httpapi

import (
	"net/http"
	"time"
)

// NewServer returns an http.Server for handler. The write timeout leaves
// room for a full Gemini round trip.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
