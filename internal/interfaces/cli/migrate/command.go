// Package migrate implements the database migration commands.
package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	"procdesk/internal/infrastructure/migration"
	"procdesk/internal/interfaces/cli/app"
)

var configPath string

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Apply schema migrations to the shared database and the per-user order databases.`,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")

	cmd.AddCommand(
		newUpCommand(),
		newStatusCommand(),
		newUsersCommand(),
	)
	return cmd
}

func newUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Run all pending shared-database migrations",
		RunE:  runUp,
	}
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the shared-database migration version",
		RunE:  runStatus,
	}
}

func newUsersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "Bring every per-user database up to the current schema",
		RunE:  runUsers,
	}
}

func runUp(cmd *cobra.Command, args []string) error {
	// Bootstrap already migrates the shared database, so finishing it is
	// the whole job here.
	a, err := app.Bootstrap(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Printf("shared database migrated (%s)\n", a.DB.SharedDBPath())
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := app.Bootstrap(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	shared, err := a.DB.Shared()
	if err != nil {
		return err
	}
	version, err := migration.SharedStatus(shared)
	if err != nil {
		return err
	}
	fmt.Printf("shared database at version %d\n", version)
	return nil
}

func runUsers(cmd *cobra.Command, args []string) error {
	a, err := app.Bootstrap(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	slugs, err := a.DB.UserSlugs()
	if err != nil {
		return err
	}
	if len(slugs) == 0 {
		fmt.Println("no user databases found")
		return nil
	}

	migrator := migration.NewUserManager()
	for _, slug := range slugs {
		db, err := a.DB.UserDBBySlug(slug)
		if err != nil {
			return fmt.Errorf("open user database %s: %w", slug, err)
		}
		if err := migrator.Migrate(db, migration.UserModels()...); err != nil {
			return fmt.Errorf("migrate user database %s: %w", slug, err)
		}
		fmt.Printf("migrated %s\n", slug)
	}
	return nil
}
