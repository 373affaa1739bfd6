package main

import (
	"os"

	"github.com/spf13/cobra"

	"procdesk/internal/interfaces/cli/dashboard"
	"procdesk/internal/interfaces/cli/migrate"
	"procdesk/internal/interfaces/cli/orders"
	"procdesk/internal/interfaces/cli/run"
	"procdesk/internal/interfaces/cli/sessions"
	"procdesk/internal/interfaces/cli/users"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "procdesk",
		Short: "Procdesk - multi-operator order desk over a shared folder",
		Long:  `Procdesk manages processing orders for a small team sharing a network folder, coordinating concurrent instances through a registry in the shared database.`,
	}

	rootCmd.AddCommand(
		run.NewCommand(),
		orders.NewCommand(),
		users.NewCommand(),
		sessions.NewCommand(),
		dashboard.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
