package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	revokeAsset string
	revokeType  string
)

// revokeCmd represents the revoke command
var revokeCmd = &cobra.Command{
	Use:   "revoke",
	Short: "Revoke an accepted recommendation",
	Long: `Revoke whatever recommendation is currently accepted for an asset.
Revoking an asset with no acceptance is a valid no-op; the backend is
still asked to clear its side.`,
	Example: `  karsi revoke --asset i-0abc --type vm`,
	RunE:    runRevoke,
}

func init() {
	rootCmd.AddCommand(revokeCmd)

	revokeCmd.Flags().StringVar(&revokeAsset, "asset", "", "Asset ID")
	revokeCmd.Flags().StringVar(&revokeType, "type", "", "Asset type: vm, db or storage")
	_ = revokeCmd.MarkFlagRequired("asset")
	_ = revokeCmd.MarkFlagRequired("type")
}

func runRevoke(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	category, err := parseCategory(revokeType)
	if err != nil {
		return err
	}

	controller, cleanup, err := buildController(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if _, err := controller.Revoke(cmd.Context(), revokeAsset, category); err != nil {
		return fmt.Errorf("revoke failed: %w", err)
	}

	fmt.Printf("Revoked recommendation for %s\n", revokeAsset)
	return nil
}
