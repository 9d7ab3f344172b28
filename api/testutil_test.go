// Copyright 2026 The Punchlist Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"crypto/ed25519"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/punchlist-io/punchlist/lib/clock"
	"github.com/punchlist-io/punchlist/lib/identity"
	"github.com/punchlist-io/punchlist/lib/itemstore"
	"github.com/punchlist-io/punchlist/lib/todo"
)

var apiTestEpoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

const testAudience = "punchlist"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// testServer bundles a fully wired Server with the fake clock driving
// it and the signing key its verifier trusts. Requests go through the
// complete middleware chain, so tests exercise CORS and authentication
// exactly as a network client would.
type testServer struct {
	server *Server
	store  *itemstore.Store
	clock  *clock.FakeClock
	key    ed25519.PrivateKey
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	public, private, err := identity.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}

	fakeClock := clock.Fake(apiTestEpoch)
	store, err := itemstore.Open(itemstore.Config{
		Path:     filepath.Join(t.TempDir(), "api_test.db"),
		PoolSize: 2,
		Clock:    fakeClock,
		Logger:   testLogger(),
	})
	if err != nil {
		t.Fatalf("itemstore.Open: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("store.Close: %v", err)
		}
	})

	server := NewServer(ServerConfig{
		Address:  "127.0.0.1:0",
		Store:    store,
		Verifier: &identity.Verifier{PublicKey: public, Audience: testAudience},
		Clock:    fakeClock,
		Logger:   testLogger(),
	})

	return &testServer{server: server, store: store, clock: fakeClock, key: private}
}

// token mints a bearer token for subject, valid for an hour of fake
// time.
func (ts *testServer) token(t *testing.T, subject string) string {
	t.Helper()
	now := ts.clock.Now()
	encoded, err := identity.Mint(ts.key, &identity.Token{
		Subject:   subject,
		Audience:  testAudience,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	return encoded
}

// do sends one request through the full middleware chain. An empty
// token leaves the Authorization header unset; an empty body sends no
// body at all.
func (ts *testServer) do(method, target, token, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	request := httptest.NewRequest(method, target, reader)
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	ts.server.handler.ServeHTTP(recorder, request)
	return recorder
}

// createItem creates an item through POST /todos and returns the
// response body decoded as an Item.
func (ts *testServer) createItem(t *testing.T, token, body string) todo.Item {
	t.Helper()
	recorder := ts.do("POST", "/todos", token, body)
	if recorder.Code != 201 {
		t.Fatalf("POST /todos = %d, want 201 (body %q)", recorder.Code, recorder.Body.String())
	}
	return decodeItem(t, recorder)
}

func decodeItem(t *testing.T, recorder *httptest.ResponseRecorder) todo.Item {
	t.Helper()
	var item todo.Item
	if err := json.Unmarshal(recorder.Body.Bytes(), &item); err != nil {
		t.Fatalf("decoding item from %q: %v", recorder.Body.String(), err)
	}
	return item
}

// decodeMessage extracts the "message" field of an error or delete
// response.
func decodeMessage(t *testing.T, recorder *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope errorResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decoding message from %q: %v", recorder.Body.String(), err)
	}
	return envelope.Message
}
