// Package cmd holds the registra command line.
package cmd

import (
	"os"

	"github.com/shandysiswandi/registra/internal/app"
	"github.com/shandysiswandi/registra/internal/pkg/config"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:          "registra",
	Short:        "User registration service",
	Long:         `Registra validates registration payloads and creates user accounts over a JSON HTTP API.`,
	Version:      version,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: $CONFIG_PATH, ./config/config.yaml when LOCAL=true, else /config/config.yaml)")

	rootCmd.AddCommand(serveCmd, migrateCmd, hashNIKCmd)
}

// initConfig lets --config win over CONFIG_PATH so every subcommand resolves
// the same file through app.ConfigPath.
func initConfig() {
	if cfgFile != "" {
		//nolint:errcheck,gosec // ignore error
		os.Setenv("CONFIG_PATH", cfgFile)
	}
}

func loadConfig() (config.Config, error) {
	return config.NewViper(app.ConfigPath())
}

// SetVersion sets the version string shown by --version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
