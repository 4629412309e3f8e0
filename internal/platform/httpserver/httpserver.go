// Package httpserver builds the API server with timeouts sized for the
// registry's traffic: small JSON bodies in, but registration requests may
// sit in a provisioning call for a while before the response is written.
package httpserver

import (
	"net/http"
	"time"
)

const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 10 * time.Second
	// writeTimeout must outlast the router's per-request timeout so the
	// middleware, not the server, cuts off a slow provisioning call.
	writeTimeout = 35 * time.Second
	idleTimeout  = time.Minute
)

func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}
