package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/karsidev/karsi/acceptance"
	"github.com/karsidev/karsi/config"
	"github.com/karsidev/karsi/storage"
	"github.com/karsidev/karsi/types"
	"github.com/karsidev/karsi/wal"
)

var (
	acceptAsset   string
	acceptType    string
	acceptVariant string
)

// acceptCmd represents the accept command
var acceptCmd = &cobra.Command{
	Use:   "accept",
	Short: "Accept a recommendation for an asset",
	Long: `Accept the safe or alternate recommendation for an asset. The
acceptance is confirmed by the backend before any local state changes;
accepting again with a different variant supersedes the previous one.`,
	Example: `  karsi accept --asset i-0abc --type vm --variant safe
  karsi accept --asset vol-9def --type storage --variant alternate`,
	RunE: runAccept,
}

func init() {
	rootCmd.AddCommand(acceptCmd)

	acceptCmd.Flags().StringVar(&acceptAsset, "asset", "", "Asset ID")
	acceptCmd.Flags().StringVar(&acceptType, "type", "", "Asset type: vm, db or storage")
	acceptCmd.Flags().StringVar(&acceptVariant, "variant", "safe", "Variant: safe or alternate")
	_ = acceptCmd.MarkFlagRequired("asset")
	_ = acceptCmd.MarkFlagRequired("type")
}

// buildController wires the acceptance controller over the shared local
// store and journal, so CLI actions and the server observe one state.
func buildController(cfg *config.Config) (*acceptance.Controller, func(), error) {
	client, err := newBackendClient(cfg)
	if err != nil {
		return nil, nil, err
	}

	if err := os.MkdirAll(cfg.Storage.Dir, 0o750); err != nil {
		return nil, nil, fmt.Errorf("create storage dir: %w", err)
	}
	store, err := storage.Open(cfg.Storage.Dir)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	journal, err := wal.Open(cfg.Storage.Dir)
	if err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("open journal: %w", err)
	}

	cleanup := func() {
		_ = journal.Close()
		_ = store.Close()
	}
	return acceptance.NewController(client, store, journal, log.Logger), cleanup, nil
}

func parseCategory(s string) (types.Category, error) {
	category := types.Category(s)
	if !category.Valid() {
		return "", fmt.Errorf("unknown asset type %q (want vm, db or storage)", s)
	}
	return category, nil
}

func runAccept(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	category, err := parseCategory(acceptType)
	if err != nil {
		return err
	}
	variant, err := types.ParseVariant(acceptVariant)
	if err != nil {
		return err
	}

	controller, cleanup, err := buildController(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	state, err := controller.Accept(cmd.Context(), acceptAsset, category, variant)
	if err != nil {
		return fmt.Errorf("accept failed: %w", err)
	}

	fmt.Printf("Accepted %s recommendation for %s (state: %s)\n", variant, acceptAsset, state)
	return nil
}
