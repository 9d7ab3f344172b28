// Copyright 2026 The Punchlist Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/punchlist-io/punchlist/lib/clock"
	"github.com/punchlist-io/punchlist/lib/identity"
	"github.com/punchlist-io/punchlist/lib/itemstore"
)

// Server serves the punchlist HTTP API on a TCP listener. It owns the
// routing table and the middleware chain; the store and the token
// verifier are injected. Serve(ctx) blocks until the context is
// cancelled and active requests drain.
type Server struct {
	address string
	handler http.Handler
	logger  *slog.Logger

	// shutdownTimeout is the maximum time to wait for active
	// requests to complete after the context is cancelled.
	shutdownTimeout time.Duration

	// ready is closed after the listener is bound and the server
	// is accepting connections.
	ready chan struct{}

	// addr is the resolved listen address, available after the
	// server starts accepting connections (after ready is closed).
	addr net.Addr
}

// ServerConfig configures a Server.
type ServerConfig struct {
	// Address is the TCP listen address (e.g., ":8080",
	// "127.0.0.1:9000"). Required.
	Address string

	// Store holds the items. Required.
	Store *itemstore.Store

	// Verifier checks inbound bearer tokens. Required.
	Verifier *identity.Verifier

	// Clock supplies the time for token expiry checks and item
	// timestamps. Required.
	Clock clock.Clock

	// ShutdownTimeout is the maximum time to wait for in-flight
	// requests to complete during graceful shutdown. Defaults to
	// 10 seconds if zero.
	ShutdownTimeout time.Duration

	// Logger is the structured logger. Required.
	Logger *slog.Logger
}

// NewServer creates a server for the configured TCP address. Missing
// required config is a programmer error and panics. Call Serve to bind
// and start accepting connections.
func NewServer(config ServerConfig) *Server {
	if config.Address == "" {
		panic("api.Server: Address is required")
	}
	if config.Store == nil {
		panic("api.Server: Store is required")
	}
	if config.Verifier == nil {
		panic("api.Server: Verifier is required")
	}
	if config.Clock == nil {
		panic("api.Server: Clock is required")
	}
	if config.Logger == nil {
		panic("api.Server: Logger is required")
	}

	timeout := config.ShutdownTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	h := &handler{
		store:     config.Store,
		clock:     config.Clock,
		logger:    config.Logger,
		startedAt: config.Clock.Now(),
	}

	return &Server{
		address:         config.Address,
		handler:         newRouter(h, config.Verifier),
		logger:          config.Logger,
		shutdownTimeout: timeout,
		ready:           make(chan struct{}),
	}
}

// newRouter assembles the routing table and the middleware chain. The
// item routes sit behind authentication; the operational endpoints and
// CORS preflight do not. CORS headers are applied outermost so that
// every response carries them, 401s included.
func newRouter(h *handler, verifier *identity.Verifier) http.Handler {
	items := http.NewServeMux()
	items.HandleFunc("POST /todos", h.handleCreate)
	items.HandleFunc("GET /todos", h.handleList)
	items.HandleFunc("PUT /todos/{id}", h.handleUpdate)
	items.HandleFunc("DELETE /todos/{id}", h.handleDelete)

	root := http.NewServeMux()
	root.HandleFunc("GET /healthz", h.handleHealth)
	root.HandleFunc("GET /statusz", h.handleStatus)
	root.HandleFunc("OPTIONS /", h.handlePreflight)
	root.Handle("/", h.authenticate(verifier, items))

	return corsHeaders(root)
}
