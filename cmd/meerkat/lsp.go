package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Elkozel/Meerkat/pkg/lsp"
	"github.com/Elkozel/Meerkat/pkg/version"
)

func lspCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Start the Suricata rules language server (stdio mode)",
		Long: `Start the language server on stdio.

Logs go to stderr; stdout carries the protocol, so the command is meant
to be launched by an editor, not by hand.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, providers, err := loadRuntime()
			if err != nil {
				return err
			}

			defer func() {
				if shutdownErr := providers.Shutdown(context.Background()); shutdownErr != nil {
					providers.Logger.Error("telemetry shutdown failed", "error", shutdownErr)
				}
			}()

			providers.Logger.Info("starting language server", "version", version.Version)

			return lsp.NewServer(cfg, providers.Logger, providers.Tracer).Run()
		},
	}
}
