package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"reelfetch/internal/ui"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List configured providers in the order they are tried",
	Args:  cobra.NoArgs,
	RunE:  providersRun,
}

func providersRun(cmd *cobra.Command, args []string) error {
	registry, err := cfg.Registry()
	if err != nil {
		return fmt.Errorf("loading providers: %w", err)
	}
	ui.RenderProviders(cmd.OutOrStdout(), registry.Providers())
	return nil
}
