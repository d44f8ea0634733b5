// Package main provides the entry point for the meerkat CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Elkozel/Meerkat/pkg/config"
	"github.com/Elkozel/Meerkat/pkg/observability"
	"github.com/Elkozel/Meerkat/pkg/version"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "meerkat",
		Short: "Meerkat - editor tooling for Suricata rules",
		Long: `Meerkat provides language tooling for Suricata rule files.

Commands:
  lsp       Start the language server (stdio mode)
  check     Parse rule files and report problems
  fmt       Reformat rule files to canonical text
  keywords  List the rule keywords known to the local Suricata`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")

	rootCmd.AddCommand(lspCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(fmtCmd())
	rootCmd.AddCommand(keywordsCmd())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintln(os.Stdout, version.String())
		},
	}
}

// loadRuntime builds the config and observability stack shared by the
// commands that need more than the bare config.
func loadRuntime() (*config.Config, observability.Providers, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, observability.Providers{}, err
	}

	providers, err := observability.Init(observability.Config{
		ServiceName:    "meerkat",
		ServiceVersion: version.Version,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		OTLPInsecure:   cfg.Telemetry.Insecure,
		LogLevel:       observability.ParseLevel(cfg.Logging.Level),
		LogJSON:        cfg.Logging.Format == "json",
	})
	if err != nil {
		return nil, observability.Providers{}, err
	}

	return cfg, providers, nil
}
