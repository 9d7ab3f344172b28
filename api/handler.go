// Copyright 2026 The Punchlist Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/punchlist-io/punchlist/lib/clock"
	"github.com/punchlist-io/punchlist/lib/itemstore"
	"github.com/punchlist-io/punchlist/lib/todo"
)

// maxRequestBodySize caps JSON request bodies. Item payloads are a
// title and a description; anything near this limit is abuse.
const maxRequestBodySize = 1 << 20 // 1 MiB

// handler implements the item routes and the operational endpoints.
// One instance serves all requests; it holds no per-request state.
type handler struct {
	store  *itemstore.Store
	clock  clock.Clock
	logger *slog.Logger

	// startedAt is recorded at construction and reported by /statusz.
	startedAt time.Time
}

// errorResponse is the envelope for every failure: a human-readable
// message and nothing else. Storage and verification details never
// cross this boundary.
type errorResponse struct {
	Message string `json:"message"`
}

// createRequest is the body of POST /todos. Description is optional.
// There is no status field: every item starts life as pending, and a
// status key in the body is ignored.
type createRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// listResponse wraps GET /todos results. Items is always a JSON array,
// never null, so clients can iterate without a presence check.
type listResponse struct {
	Items []todo.Item `json:"items"`
}

// deleteResponse confirms a deletion and echoes the removed item so
// clients can offer an undo without a prior read.
type deleteResponse struct {
	Message string    `json:"message"`
	Item    todo.Item `json:"item"`
}

// statusResponse is the body of GET /statusz.
type statusResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
	Items  int64  `json:"items"`
}

// handleCreate services POST /todos: decode, validate, assign identity
// and timestamps, store, and echo the stored item back with 201.
func (h *handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	owner := ownerFromContext(r.Context())
	if owner == "" {
		h.sendError(w, http.StatusUnauthorized, "missing verified subject")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var request createRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.sendDecodeError(w, err)
		return
	}

	item := todo.NewItem(owner, request.Title, request.Description, todo.StatusPending, h.clock.Now())
	if err := item.Validate(); err != nil {
		h.sendError(w, http.StatusBadRequest, "%v", err)
		return
	}

	if err := h.store.Put(r.Context(), item); err != nil {
		h.sendStoreError(w, r, "put", err)
		return
	}

	h.logger.Info("item created", "owner", owner, "id", item.ID)
	h.writeJSON(w, http.StatusCreated, item)
}

// handleList services GET /todos: every item belonging to the verified
// subject, oldest first. Other owners' items are invisible by
// construction — the owner is part of the storage key.
func (h *handler) handleList(w http.ResponseWriter, r *http.Request) {
	owner := ownerFromContext(r.Context())
	if owner == "" {
		h.sendError(w, http.StatusUnauthorized, "missing verified subject")
		return
	}

	items, err := h.store.List(r.Context(), owner)
	if err != nil {
		h.sendStoreError(w, r, "list", err)
		return
	}

	h.logger.Info("items listed", "owner", owner, "count", len(items))
	h.writeJSON(w, http.StatusOK, listResponse{Items: items})
}

// handleUpdate services PUT /todos/{id}: a partial update. Fields the
// body omits (or sets to null) keep their stored values; a body with no
// recognized field at all is a client error. A miss reports the same
// 404 whether the item does not exist or belongs to someone else.
func (h *handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	owner := ownerFromContext(r.Context())
	if owner == "" {
		h.sendError(w, http.StatusUnauthorized, "missing verified subject")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var patch todo.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.sendDecodeError(w, err)
		return
	}
	if patch.Empty() {
		h.sendError(w, http.StatusBadRequest, "no valid fields provided")
		return
	}
	if err := patch.Validate(); err != nil {
		h.sendError(w, http.StatusBadRequest, "%v", err)
		return
	}

	id := r.PathValue("id")
	item, err := h.store.Update(r.Context(), owner, id, patch)
	if err != nil {
		h.sendStoreError(w, r, "update", err)
		return
	}

	h.logger.Info("item updated", "owner", owner, "id", id)
	h.writeJSON(w, http.StatusOK, item)
}

// handleDelete services DELETE /todos/{id}. The response echoes the
// deleted item. Misses map exactly like updates: absent and not-yours
// are the same 404.
func (h *handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	owner := ownerFromContext(r.Context())
	if owner == "" {
		h.sendError(w, http.StatusUnauthorized, "missing verified subject")
		return
	}

	id := r.PathValue("id")
	item, err := h.store.Delete(r.Context(), owner, id)
	if err != nil {
		h.sendStoreError(w, r, "delete", err)
		return
	}

	h.logger.Info("item deleted", "owner", owner, "id", id)
	h.writeJSON(w, http.StatusOK, deleteResponse{
		Message: "item deleted",
		Item:    item,
	})
}

// handleHealth services GET /healthz: liveness only, no storage touch.
func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleStatus services GET /statusz: uptime plus a total item count,
// which doubles as a storage reachability probe.
func (h *handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	count, err := h.store.Count(r.Context())
	if err != nil {
		h.sendStoreError(w, r, "count", err)
		return
	}

	h.writeJSON(w, http.StatusOK, statusResponse{
		Status: "ok",
		Uptime: h.clock.Now().Sub(h.startedAt).Round(time.Second).String(),
		Items:  count,
	})
}

// handlePreflight answers CORS preflight requests with no body. The
// shared headers are set by the outer middleware; preflights never
// carry credentials, so no authentication applies.
func (h *handler) handlePreflight(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// sendStoreError translates a store failure into the wire taxonomy.
// A malformed key was the caller's doing (400); a miss on the
// (owner, id) key is 404 whether the item never existed or belongs to
// another owner; anything else is an internal fault — logged in full,
// reported generically.
func (h *handler) sendStoreError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	switch {
	case errors.Is(err, itemstore.ErrMalformedKey):
		h.sendError(w, http.StatusBadRequest, "invalid item id")
	case errors.Is(err, itemstore.ErrNotFound):
		h.sendError(w, http.StatusNotFound, "item not found")
	default:
		h.logger.Error("store operation failed",
			"operation", operation,
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
		h.sendError(w, http.StatusInternalServerError, "storage unavailable")
	}
}

// sendDecodeError classifies a request body decode failure. An
// oversized body gets its own status; everything else (syntax errors,
// wrong field types, an empty body) is a plain invalid-body 400.
func (h *handler) sendDecodeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.sendError(w, http.StatusRequestEntityTooLarge, "request body exceeds %d bytes", tooLarge.Limit)
		return
	}
	h.sendError(w, http.StatusBadRequest, "invalid request body: %v", err)
}

// sendError writes the JSON error envelope with the given status.
func (h *handler) sendError(w http.ResponseWriter, status int, format string, args ...any) {
	message := fmt.Sprintf(format, args...)
	if status < http.StatusInternalServerError {
		h.logger.Debug("request rejected", "status", status, "message", message)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(errorResponse{Message: message}); err != nil {
		h.logger.Warn("writing JSON error response", "error", err, "status", status)
	}
}

// writeJSON encodes value as JSON into w with the given status. If
// encoding fails (typically because the client disconnected), the error
// is logged — the caller cannot send a corrective response to a dead
// client.
func (h *handler) writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(value); err != nil {
		h.logger.Warn("writing JSON response", "error", err)
	}
}
