// Copyright 2026 The Punchlist Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/tidwall/jsonc"

	"github.com/punchlist-io/punchlist/lib/clock"
	"github.com/punchlist-io/punchlist/lib/itemstore"
	"github.com/punchlist-io/punchlist/lib/todo"
)

// seedItem is one entry of a seed fixture. Only owner and title are
// required; id, status, and description receive the same defaults as a
// created item. A fixed id makes an entry idempotent across restarts
// (Put replaces the existing row).
type seedItem struct {
	Owner       string      `json:"owner"`
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Status      todo.Status `json:"status"`
}

// loadSeed reads a JSONC fixture (// comments, /* block comments */,
// and trailing commas permitted) and writes every entry through the
// store. Any malformed entry aborts startup: a half-loaded seed would
// leave the development database in a state nobody intended.
func loadSeed(ctx context.Context, store *itemstore.Store, clk clock.Clock, logger *slog.Logger, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading seed file: %w", err)
	}

	// Strip comments and trailing commas before parsing as standard JSON.
	stripped := jsonc.ToJSON(data)

	var entries []seedItem
	if err := json.Unmarshal(stripped, &entries); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	for i, entry := range entries {
		item := todo.NewItem(entry.Owner, entry.Title, entry.Description, entry.Status, clk.Now())
		if entry.ID != "" {
			item.ID = entry.ID
		}
		if err := item.Validate(); err != nil {
			return fmt.Errorf("seed item %d: %w", i, err)
		}
		if err := store.Put(ctx, item); err != nil {
			return fmt.Errorf("seed item %d (%q): %w", i, item.Title, err)
		}
	}

	logger.Info("seed loaded", "path", path, "items", len(entries))
	return nil
}
