// Copyright 2026 The Punchlist Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/punchlist-io/punchlist/lib/clock"
	"github.com/punchlist-io/punchlist/lib/identity"
	"github.com/punchlist-io/punchlist/lib/itemstore"
	"github.com/punchlist-io/punchlist/lib/testutil"
)

func TestServerLifecycle(t *testing.T) {
	ts := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serveDone := make(chan error, 1)
	go func() {
		serveDone <- ts.server.Serve(ctx)
	}()

	testutil.RequireClosed(t, ts.server.Ready(), 5*time.Second, "server ready")
	base := "http://" + ts.server.Addr().String()

	// Unauthenticated liveness probe over real TCP.
	response, err := http.Get(base + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	body, _ := io.ReadAll(response.Body)
	response.Body.Close()
	if response.StatusCode != http.StatusOK {
		t.Errorf("GET /healthz = %d, want 200", response.StatusCode)
	}
	if !strings.Contains(string(body), `"status":"ok"`) {
		t.Errorf("GET /healthz body = %q, want status ok", body)
	}
	if origin := response.Header.Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Errorf("Allow-Origin = %q, want *", origin)
	}

	// A full authenticated create, end to end.
	request, err := http.NewRequest("POST", base+"/todos", strings.NewReader(`{"title":"over the wire"}`))
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	request.Header.Set("Authorization", "Bearer "+ts.token(t, "user-1"))
	response, err = http.DefaultClient.Do(request)
	if err != nil {
		t.Fatalf("POST /todos: %v", err)
	}
	io.Copy(io.Discard, response.Body)
	response.Body.Close()
	if response.StatusCode != http.StatusCreated {
		t.Errorf("POST /todos = %d, want 201", response.StatusCode)
	}

	// Cancel the context to trigger graceful shutdown.
	cancel()
	if err := testutil.RequireReceive(t, serveDone, 5*time.Second, "waiting for shutdown"); err != nil {
		t.Errorf("Serve() = %v, want nil", err)
	}
}

func TestNewServerPanicsOnMissingConfig(t *testing.T) {
	public, _, err := identity.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	fakeClock := clock.Fake(apiTestEpoch)
	store, err := itemstore.Open(itemstore.Config{
		Path:     filepath.Join(t.TempDir(), "config_test.db"),
		PoolSize: 1,
		Clock:    fakeClock,
		Logger:   testLogger(),
	})
	if err != nil {
		t.Fatalf("itemstore.Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	verifier := &identity.Verifier{PublicKey: public, Audience: testAudience}
	logger := testLogger()

	tests := []struct {
		name   string
		config ServerConfig
	}{
		{
			name:   "missing_address",
			config: ServerConfig{Store: store, Verifier: verifier, Clock: fakeClock, Logger: logger},
		},
		{
			name:   "missing_store",
			config: ServerConfig{Address: ":0", Verifier: verifier, Clock: fakeClock, Logger: logger},
		},
		{
			name:   "missing_verifier",
			config: ServerConfig{Address: ":0", Store: store, Clock: fakeClock, Logger: logger},
		},
		{
			name:   "missing_clock",
			config: ServerConfig{Address: ":0", Store: store, Verifier: verifier, Logger: logger},
		},
		{
			name:   "missing_logger",
			config: ServerConfig{Address: ":0", Store: store, Verifier: verifier, Clock: fakeClock},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if r := recover(); r == nil {
					t.Error("NewServer did not panic")
				}
			}()
			NewServer(tt.config)
		})
	}
}
