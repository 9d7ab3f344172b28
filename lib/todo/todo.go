// Copyright 2026 The Punchlist Authors
// SPDX-License-Identifier: Apache-2.0

// Package todo defines the item model shared by the store, the HTTP
// handlers, and the seed loader: the Item record itself, the Status
// enum, and the Patch carrier for partial updates.
package todo

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an item. Exactly two states exist;
// anything else is rejected before it reaches storage.
type Status string

const (
	// StatusPending is the initial state of every item.
	StatusPending Status = "pending"

	// StatusCompleted marks an item as done. Completion is not
	// terminal: an item can move back to pending.
	StatusCompleted Status = "completed"
)

// Valid reports whether s is a recognized status. The comparison is
// exact — "Pending", "done", and "" are all invalid.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted:
		return true
	default:
		return false
	}
}

// Item is a single to-do record. Items are keyed by (Owner, ID): the
// owner is the verified subject of the caller's token and is part of
// every storage key, so no operation can address another owner's rows.
type Item struct {
	// Owner is the verified subject that created the item. Never
	// taken from the request body.
	Owner string `json:"owner"`

	// ID is a UUID string assigned at creation.
	ID string `json:"id"`

	// Title is a short summary. Stored trimmed; never empty.
	Title string `json:"title"`

	// Description is optional freeform detail. Defaults to "".
	Description string `json:"description"`

	// Status is "pending" or "completed".
	Status Status `json:"status"`

	// CreatedAt is set once at creation (UTC) and never changes.
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is rewritten on every successful mutation (UTC).
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewItem builds a well-formed item for the given owner: the title is
// trimmed, the description and status receive their defaults when
// empty, a fresh ID is assigned, and both timestamps are set to now in
// UTC. The caller validates the result before storing it.
func NewItem(owner, title, description string, status Status, now time.Time) Item {
	if status == "" {
		status = StatusPending
	}
	now = now.UTC()
	return Item{
		Owner:       owner,
		ID:          uuid.Must(uuid.NewV7()).String(),
		Title:       strings.TrimSpace(title),
		Description: description,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Validate checks that all required fields are present and well-formed.
// Returns an error describing the first invalid field found, or nil if
// the item is valid.
func (i *Item) Validate() error {
	if i.Owner == "" {
		return errors.New("todo: owner is required")
	}
	if i.ID == "" {
		return errors.New("todo: id is required")
	}
	if strings.TrimSpace(i.Title) == "" {
		return errors.New("todo: title is required")
	}
	if !i.Status.Valid() {
		return fmt.Errorf("todo: unknown status %q", i.Status)
	}
	if i.CreatedAt.IsZero() {
		return errors.New("todo: createdAt is required")
	}
	if i.UpdatedAt.IsZero() {
		return errors.New("todo: updatedAt is required")
	}
	return nil
}

// Patch is a partial update to an item. Pointer fields distinguish
// "not provided" (nil) from "set to zero value": a JSON body that
// omits a field (or sets it to null) leaves the stored value alone.
type Patch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

// Empty reports whether the patch carries no recognized field. An
// empty patch is a client error — there is nothing to update.
func (p *Patch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil
}

// Validate checks the fields that are present. Absent fields are not
// validated — they will not be written.
func (p *Patch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return errors.New("todo: title must not be blank")
	}
	if p.Status != nil && !Status(*p.Status).Valid() {
		return fmt.Errorf("todo: unknown status %q", *p.Status)
	}
	return nil
}
