// Package state persists open positions between runs so a live scan can
// resume where the previous one left off.
package state

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/adaptivex/sectorbot/internal/core"
	"github.com/adaptivex/sectorbot/internal/storage/archive"
)

// snapshotPath is the fixed key under the storage root.
const snapshotPath = "positions.json"

// Position is one persisted open holding.
type Position struct {
	Ticker     string    `json:"ticker"`
	Parent     string    `json:"parent"`
	Category   string    `json:"category"`
	EntryDate  time.Time `json:"entry_date"`
	EntryPrice float64   `json:"entry_price"`
	EntrySBI   int       `json:"entry_sbi"`
	Weight     float64   `json:"weight"`
	Shares     float64   `json:"shares"`
}

// Snapshot is the persisted document.
type Snapshot struct {
	SavedAt   time.Time  `json:"saved_at"`
	Positions []Position `json:"positions"`
}

// Store reads and writes position snapshots on an archive backend.
type Store struct {
	storage archive.Storage
}

// NewStore creates a snapshot store.
func NewStore(storage archive.Storage) *Store {
	return &Store{storage: storage}
}

// Save writes the open positions, stamped with the current time.
func (s *Store) Save(ctx context.Context, positions []Position) error {
	doc := Snapshot{SavedAt: time.Now().UTC(), Positions: positions}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return s.storage.Write(ctx, snapshotPath, data)
}

// Load reads the last saved snapshot. A missing snapshot yields
// core.ErrSnapshotNotFound so callers can start fresh.
func (s *Store) Load(ctx context.Context) (*Snapshot, error) {
	ok, err := s.storage.Exists(ctx, snapshotPath)
	if err != nil {
		return nil, fmt.Errorf("checking snapshot: %w", err)
	}
	if !ok {
		return nil, core.ErrSnapshotNotFound
	}

	data, err := s.storage.Read(ctx, snapshotPath)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	var doc Snapshot
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return &doc, nil
}

// Clear removes the snapshot if one exists.
func (s *Store) Clear(ctx context.Context) error {
	ok, err := s.storage.Exists(ctx, snapshotPath)
	if err != nil || !ok {
		return err
	}
	return s.storage.Delete(ctx, snapshotPath)
}
