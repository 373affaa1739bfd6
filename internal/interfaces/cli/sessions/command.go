// Package sessions implements the coordination administration commands.
package sessions

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"procdesk/internal/application/session/usecases"
	"procdesk/internal/infrastructure/permission"
	"procdesk/internal/interfaces/cli/app"
)

var (
	configPath string
	adminName  string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect and control live sessions",
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	cmd.PersistentFlags().StringVarP(&adminName, "admin", "a", "", "Administrator username (required)")
	_ = cmd.MarkPersistentFlagRequired("admin")

	cmd.AddCommand(
		newListCommand(),
		newForceLogoutCommand(),
		newShutdownAllCommand(),
		newReapCommand(),
	)
	return cmd
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show registered sessions and whether they are stale",
		RunE:  runList,
	}
}

func newForceLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "force-logout <username>",
		Short: "Ask a user's running instance to log out",
		Args:  cobra.ExactArgs(1),
		RunE:  runForceLogout,
	}
}

func newShutdownAllCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shutdown-all",
		Short: "Ask every running instance to shut down",
		RunE:  runShutdownAll,
	}
}

func newReapCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reap",
		Short: "Remove stale sessions and expired commands",
		RunE:  runReap,
	}
}

func requireAdmin(ctx context.Context, a *app.App) error {
	password, err := app.PromptPassword(fmt.Sprintf("Password for %s", adminName))
	if err != nil {
		return err
	}
	account, err := a.Authenticate(ctx, adminName, password)
	if err != nil {
		return err
	}
	return a.Authorize(account, permission.ResourceSession, permission.ActionManage)
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := app.Bootstrap(configPath)
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	if err := requireAdmin(ctx, a); err != nil {
		return err
	}

	coord := a.Coordination()
	sessions, err := usecases.NewListSessionsUseCase(a.Registry, coord.SessionTimeout, a.Logger).
		Execute(ctx)
	if err != nil {
		return err
	}

	for _, s := range sessions {
		state := "live"
		if s.Stale {
			state = "stale"
		}
		fmt.Printf("%-20s %-24s %-6s last seen %s\n",
			s.Username, s.Host, state, s.LastUpdated.Local().Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("%d session(s)\n", len(sessions))
	return nil
}

func runForceLogout(cmd *cobra.Command, args []string) error {
	a, err := app.Bootstrap(configPath)
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	if err := requireAdmin(ctx, a); err != nil {
		return err
	}

	if err := usecases.NewForceLogoutUseCase(a.Registry, a.Logger).
		Execute(ctx, args[0]); err != nil {
		return err
	}
	fmt.Printf("force logout requested for %s\n", args[0])
	return nil
}

func runShutdownAll(cmd *cobra.Command, args []string) error {
	a, err := app.Bootstrap(configPath)
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	if err := requireAdmin(ctx, a); err != nil {
		return err
	}

	if err := usecases.NewShutdownAllUseCase(a.Registry, a.Logger).Execute(ctx); err != nil {
		return err
	}
	fmt.Println("shutdown requested for all running instances")
	return nil
}

func runReap(cmd *cobra.Command, args []string) error {
	a, err := app.Bootstrap(configPath)
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	if err := requireAdmin(ctx, a); err != nil {
		return err
	}

	coord := a.Coordination()
	sessions, commands, err := usecases.NewReapUseCase(a.Registry, coord.SessionTimeout, coord.CommandTTL, a.Logger).
		Execute(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("removed %d stale session(s) and %d expired command(s)\n", sessions, commands)
	return nil
}
