// Package users implements the account administration commands.
package users

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"procdesk/internal/application/admin/usecases"
	"procdesk/internal/domain/user"
	"procdesk/internal/infrastructure/permission"
	"procdesk/internal/interfaces/cli/app"
)

var (
	configPath string
	adminName  string

	createAdmin     bool
	includeArchived bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage operator accounts",
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	cmd.PersistentFlags().StringVarP(&adminName, "admin", "a", "", "Administrator username")

	cmd.AddCommand(
		newCreateCommand(),
		newListCommand(),
		newResetPasswordCommand(),
		newChangePasswordCommand(),
		newArchiveCommand(),
		newRestoreCommand(),
		newDeleteCommand(),
	)
	return cmd
}

func newCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <username>",
		Short: "Create an operator account",
		Args:  cobra.ExactArgs(1),
		RunE:  runCreate,
	}
	cmd.Flags().BoolVar(&createAdmin, "admin-role", false, "Grant the new account administrator rights")
	return cmd
}

func newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE:  runList,
	}
	cmd.Flags().BoolVar(&includeArchived, "include-archived", false, "Also show archived accounts")
	return cmd
}

func newResetPasswordCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-password <username>",
		Short: "Set a temporary password that must be changed on next login",
		Args:  cobra.ExactArgs(1),
		RunE:  runResetPassword,
	}
}

func newChangePasswordCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "change-password <username>",
		Short: "Change your own password",
		Args:  cobra.ExactArgs(1),
		RunE:  runChangePassword,
	}
}

func newArchiveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "archive <username>",
		Short: "Deactivate an account and park its database file",
		Args:  cobra.ExactArgs(1),
		RunE:  runArchive,
	}
}

func newRestoreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <username>",
		Short: "Reactivate an archived account",
		Args:  cobra.ExactArgs(1),
		RunE:  runRestore,
	}
}

func newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <username>",
		Short: "Permanently remove an account and its data",
		Args:  cobra.ExactArgs(1),
		RunE:  runDelete,
	}
}

// requireAdmin authenticates the administrator named by --admin and checks
// the user-management permission.
func requireAdmin(ctx context.Context, a *app.App) (*user.User, error) {
	if adminName == "" {
		return nil, fmt.Errorf("--admin is required")
	}
	password, err := app.PromptPassword(fmt.Sprintf("Password for %s", adminName))
	if err != nil {
		return nil, err
	}
	account, err := a.Authenticate(ctx, adminName, password)
	if err != nil {
		return nil, err
	}
	if err := a.Authorize(account, permission.ResourceUser, permission.ActionManage); err != nil {
		return nil, err
	}
	return account, nil
}

func runCreate(cmd *cobra.Command, args []string) error {
	a, err := app.Bootstrap(configPath)
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	// The very first account is created without authentication so a fresh
	// install can be bootstrapped. Every later creation is admin-gated.
	hasAdmin, err := a.UserRepo.AdminExists(ctx)
	if err != nil {
		return err
	}
	if hasAdmin {
		if _, err := requireAdmin(ctx, a); err != nil {
			return err
		}
	} else if !createAdmin {
		return fmt.Errorf("no administrator exists yet, create one first with --admin-role")
	}

	password, err := app.PromptNewPassword(fmt.Sprintf("Password for %s", args[0]))
	if err != nil {
		return err
	}

	account, err := usecases.NewCreateUserUseCase(a.UserRepo, a.Hasher, a.Logger).
		Execute(ctx, usecases.CreateUserCommand{
			Name:     args[0],
			Password: password,
			Admin:    createAdmin,
		})
	if err != nil {
		return err
	}
	fmt.Printf("created %s account %q\n", account.Role(), account.Name())
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := app.Bootstrap(configPath)
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	if _, err := requireAdmin(ctx, a); err != nil {
		return err
	}

	accounts, err := usecases.NewListUsersUseCase(a.UserRepo, a.Logger).
		Execute(ctx, includeArchived)
	if err != nil {
		return err
	}

	for _, acc := range accounts {
		state := "active"
		if !acc.IsActive() {
			state = "archived"
		}
		flags := ""
		if acc.ResetPending() {
			flags = " reset-pending"
		}
		fmt.Printf("%-20s %-10s %s%s\n", acc.Name(), acc.Role(), state, flags)
	}
	fmt.Printf("%d account(s)\n", len(accounts))
	return nil
}

func runResetPassword(cmd *cobra.Command, args []string) error {
	a, err := app.Bootstrap(configPath)
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	if _, err := requireAdmin(ctx, a); err != nil {
		return err
	}

	temporary, err := app.PromptPassword(fmt.Sprintf("Temporary password for %s", args[0]))
	if err != nil {
		return err
	}

	if err := usecases.NewResetPasswordUseCase(a.UserRepo, a.Hasher, a.Logger).
		Execute(ctx, args[0], temporary); err != nil {
		return err
	}
	fmt.Printf("%s must change the password on next login\n", args[0])
	return nil
}

func runChangePassword(cmd *cobra.Command, args []string) error {
	a, err := app.Bootstrap(configPath)
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	current, err := app.PromptPassword("Current password")
	if err != nil {
		return err
	}
	// Changing a password only needs the current one, no admin involved.
	if _, err := a.Authenticate(ctx, args[0], current); err != nil {
		return err
	}
	next, err := app.PromptNewPassword("New password")
	if err != nil {
		return err
	}

	if err := usecases.NewChangePasswordUseCase(a.UserRepo, a.Hasher, a.Logger).
		Execute(ctx, args[0], current, next); err != nil {
		return err
	}
	fmt.Println("password changed")
	return nil
}

func runArchive(cmd *cobra.Command, args []string) error {
	a, err := app.Bootstrap(configPath)
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	if _, err := requireAdmin(ctx, a); err != nil {
		return err
	}

	if err := usecases.NewArchiveUserUseCase(a.UserRepo, a.DB, a.Registry, a.Logger).
		Execute(ctx, args[0]); err != nil {
		return err
	}
	a.Orders.Evict(args[0])
	fmt.Printf("archived %s\n", args[0])
	return nil
}

func runRestore(cmd *cobra.Command, args []string) error {
	a, err := app.Bootstrap(configPath)
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	if _, err := requireAdmin(ctx, a); err != nil {
		return err
	}

	if err := usecases.NewRestoreUserUseCase(a.UserRepo, a.DB, a.Logger).
		Execute(ctx, args[0]); err != nil {
		return err
	}
	fmt.Printf("restored %s\n", args[0])
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	a, err := app.Bootstrap(configPath)
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	admin, err := requireAdmin(ctx, a)
	if err != nil {
		return err
	}
	if admin.Name() == args[0] {
		return fmt.Errorf("refusing to delete the authenticated administrator")
	}

	if err := usecases.NewDeleteUserUseCase(a.UserRepo, a.DB, a.Registry, a.Logger).
		Execute(ctx, args[0]); err != nil {
		return err
	}
	a.Orders.Evict(args[0])
	fmt.Printf("deleted %s and its data\n", args[0])
	return nil
}
