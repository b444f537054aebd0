package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adaptivex/sectorbot/internal/core"
	"github.com/adaptivex/sectorbot/internal/state"
	"github.com/adaptivex/sectorbot/internal/storage/archive"
)

var positionsCmd = &cobra.Command{
	Use:   "positions",
	Short: "Inspect the saved open-positions snapshot",
	RunE:  runPositionsShow,
}

var positionsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the saved snapshot",
	RunE:  runPositionsClear,
}

func init() {
	positionsCmd.AddCommand(positionsClearCmd)
	rootCmd.AddCommand(positionsCmd)
}

func openSnapshotStore() (*state.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	storage, err := archive.Open(cfg.Snapshot)
	if err != nil {
		return nil, err
	}
	return state.NewStore(storage), nil
}

func runPositionsShow(cmd *cobra.Command, args []string) error {
	store, err := openSnapshotStore()
	if err != nil {
		return err
	}
	snap, err := store.Load(cmd.Context())
	if errors.Is(err, core.ErrSnapshotNotFound) {
		fmt.Println("No snapshot saved.")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("Saved %s, %d position(s)\n\n", snap.SavedAt.Format("2006-01-02 15:04 MST"), len(snap.Positions))
	for _, p := range snap.Positions {
		fmt.Printf("  %-6s %-8s entered %s @ %.2f  sbi=%d weight=%.1f shares=%.4f\n",
			p.Ticker, p.Parent, p.EntryDate.Format("2006-01-02"), p.EntryPrice, p.EntrySBI, p.Weight, p.Shares)
	}
	return nil
}

func runPositionsClear(cmd *cobra.Command, args []string) error {
	store, err := openSnapshotStore()
	if err != nil {
		return err
	}
	if err := store.Clear(cmd.Context()); err != nil {
		return err
	}
	fmt.Println("Snapshot cleared.")
	return nil
}
