package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sfx/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize an sfx config file in the current directory",
	Long:  `Creates a ` + config.DefaultPath + ` file in the current directory with default settings.`,
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := config.DefaultPath

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s", configPath)
	}

	if err := config.WriteDefaultConfig(configPath); err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", configPath)
	return nil
}
