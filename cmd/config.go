package cmd

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// configCmd prints the effective configuration with secrets masked.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(GetConfig().Redacted()); err != nil {
			return err
		}
		return enc.Close()
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
