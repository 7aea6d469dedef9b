package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"paylog/config"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "paylog",
	Short: "Track freelancer worklogs and confirm payment batches.",
	Long: `paylog tracks freelancer worklogs with their time entries in a local SQLite
database, serves a JSON API for listing worklogs and building payment batches,
and exports worklog and payment reports to CSV or Excel.`,
	Example: `
  # Create configuration file
  paylog config create

  # Start the API server
  paylog serve

  # Import a time sheet for one freelancer
  paylog import -i timesheet.csv --freelancer ada@example.com

  # Export worklogs with earned amounts
  paylog export --mode worklogs --output ./worklogs.csv

  # Export payment batches
  paylog export --mode payments --output ./payments.xlsx
`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	config.SetDefaults()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "configFile", "", "Config file override (default discovery: $HOME/.paylog.yaml, then ./.paylog.yaml)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".paylog" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".paylog")
	}

	viper.AutomaticEnv() // read in environment variables that match

	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "No config file found, using defaults. Create one with: paylog config create")
	}
}
