package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "imgkeeper",
		Short:        "LINE bot that archives chat images to disk",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(configPath(cmd))
		},
	}
	cmd.PersistentFlags().String("config", "", "Config file path (default $CONFIG_PATH or config.toml).")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newResolveCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func configPath(cmd *cobra.Command) string {
	if path, err := cmd.Flags().GetString("config"); err == nil && strings.TrimSpace(path) != "" {
		return strings.TrimSpace(path)
	}
	return strings.TrimSpace(os.Getenv("CONFIG_PATH"))
}
