package cmd

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage paylog configuration file values.",
	Long: `Create, edit, and display the paylog configuration file.

The configuration stores application-wide values:
- server.port
- database.path
- log.level`,
	Example: `
  # Create default config in $HOME/.paylog.yaml
  paylog config create

  # Show active config and source file
  paylog config show

  # Open active config in editor (creates example if missing)
  paylog config edit
`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
