package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var assignApplication string

// assetsCmd groups bulk asset management subcommands
var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "Manage asset assignment",
}

var assetsAssignCmd = &cobra.Command{
	Use:   "assign [asset-id...]",
	Short: "Assign assets to an application",
	Long: `Attach one or more unassigned assets to an application. Assigned
assets appear under their application in reports and the dashboard
instead of the unassigned rollup.`,
	Example: `  karsi assets assign i-0abc vol-9def --application billing`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runAssetsAssign,
}

var assetsDeleteCmd = &cobra.Command{
	Use:     "delete [asset-id...]",
	Short:   "Remove assets from tracking",
	Example: `  karsi assets delete i-0abc vol-9def`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runAssetsDelete,
}

func init() {
	rootCmd.AddCommand(assetsCmd)
	assetsCmd.AddCommand(assetsAssignCmd)
	assetsCmd.AddCommand(assetsDeleteCmd)

	assetsAssignCmd.Flags().StringVar(&assignApplication, "application", "", "Target application name")
	_ = assetsAssignCmd.MarkFlagRequired("application")
}

func runAssetsAssign(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := newBackendClient(cfg)
	if err != nil {
		return err
	}

	if err := client.AssignAssets(cmd.Context(), args, assignApplication); err != nil {
		return fmt.Errorf("assign failed: %w", err)
	}

	fmt.Printf("Assigned %d asset(s) to %s\n", len(args), assignApplication)
	return nil
}

func runAssetsDelete(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := newBackendClient(cfg)
	if err != nil {
		return err
	}

	if err := client.DeleteAssets(cmd.Context(), args); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}

	fmt.Printf("Deleted %d asset(s)\n", len(args))
	return nil
}
