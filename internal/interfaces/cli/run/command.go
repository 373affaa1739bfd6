// Package run implements the interactive session command: it logs an
// operator in, keeps the session row alive, and reacts to administrative
// commands until the process is told to stop.
package run

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	adminusecases "procdesk/internal/application/admin/usecases"
	"procdesk/internal/application/session"
	sessionusecases "procdesk/internal/application/session/usecases"
	"procdesk/internal/interfaces/cli/app"
	"procdesk/internal/shared/logger"
)

var (
	configPath string
	username   string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start an operator session",
		Long: `Log in and hold the session until interrupted. While running, the
session heartbeats the shared registry and obeys force-logout and
shutdown commands issued by administrators on other machines.`,
		RunE: run,
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	cmd.Flags().StringVarP(&username, "user", "u", "", "Username to log in as (required)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	a, err := app.Bootstrap(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	coord := a.Coordination()
	host := app.Hostname()
	log := a.Logger

	// Opportunistic housekeeping: reap leftovers from crashed instances
	// and refresh planner statistics when due.
	reap := sessionusecases.NewReapUseCase(a.Registry, coord.SessionTimeout, coord.CommandTTL, log)
	if _, _, err := reap.Execute(ctx); err != nil {
		log.Warnw("startup reap failed", "error", err)
	}
	if err := a.DB.RunMaintenance(time.Now().UTC()); err != nil {
		log.Warnw("database maintenance failed", "error", err)
	}

	password, err := app.PromptPassword("Password")
	if err != nil {
		return err
	}

	login := sessionusecases.NewLoginUseCase(a.UserRepo, a.Registry, a.Hasher, coord.SessionTimeout, log)
	result, err := login.Execute(ctx, sessionusecases.LoginCommand{
		Username: username,
		Password: password,
		Host:     host,
	})
	if err != nil {
		return err
	}

	if result.TookOver {
		fmt.Fprintf(os.Stderr, "note: an active session on %s was taken over\n", result.PreviousHost)
	}

	if result.ResetRequired {
		if err := completeReset(ctx, a, log); err != nil {
			// The session row was already claimed; release it before
			// failing out.
			_ = sessionusecases.NewLogoutUseCase(a.Registry, log).Execute(ctx, username)
			return err
		}
	}

	// Touch the operator's order database so first-login provisioning
	// happens here and not in the middle of their first order.
	if _, err := a.Orders.ForUser(username); err != nil {
		return err
	}

	displaced := make(chan string, 1)
	forcedOut := make(chan struct{}, 1)
	shutdown := make(chan struct{}, 1)

	heartbeat := sessionusecases.NewHeartbeatUseCase(a.Registry, log)
	watcher := session.NewWatcher(heartbeat, a.Registry, username, host,
		coord.HeartbeatInterval, coord.PollInterval,
		session.WatcherCallbacks{
			OnDisplaced:   func(h string) { displaced <- h },
			OnForceLogout: func() { forcedOut <- struct{}{} },
			OnShutdown:    func() { shutdown <- struct{}{} },
		}, log)
	watcher.Start(ctx)

	fmt.Printf("session started for %s on %s (run %s)\n", username, host, watcher.RunID())

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, syscall.SIGINT, syscall.SIGTERM)

	keepRow := false
	select {
	case <-interrupt:
		fmt.Println("interrupted, logging out")
	case h := <-displaced:
		fmt.Fprintf(os.Stderr, "session taken over by %s, exiting\n", h)
		keepRow = true
	case <-forcedOut:
		fmt.Fprintln(os.Stderr, "logged out by an administrator")
	case <-shutdown:
		fmt.Fprintln(os.Stderr, "shutdown requested by an administrator")
	}

	cancel()
	watcher.Stop()

	if !keepRow {
		logoutCtx, logoutCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer logoutCancel()
		if err := sessionusecases.NewLogoutUseCase(a.Registry, log).Execute(logoutCtx, username); err != nil {
			log.Warnw("failed to release session on exit", "error", err)
		}
	}
	return nil
}

func completeReset(ctx context.Context, a *app.App, log logger.Interface) error {
	fmt.Fprintln(os.Stderr, "a password reset is pending; choose a new password")
	next, err := app.PromptNewPassword("New password")
	if err != nil {
		return err
	}
	return adminusecases.NewCompletePasswordResetUseCase(a.UserRepo, a.Hasher, log).
		Execute(ctx, username, next)
}
