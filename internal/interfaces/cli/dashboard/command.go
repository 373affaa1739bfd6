// Package dashboard implements the activity report command.
package dashboard

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"procdesk/internal/application/dashboard"
	"procdesk/internal/domain/order"
	"procdesk/internal/infrastructure/permission"
	"procdesk/internal/interfaces/cli/app"
	apperrors "procdesk/internal/shared/errors"
)

var (
	configPath string
	adminName  string

	clientPrefix string
	numberPrefix string
	fromDate     string
	toDate       string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show activity metrics across all operators",
		RunE:  run,
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	cmd.Flags().StringVarP(&adminName, "admin", "a", "", "Administrator username (required)")
	cmd.Flags().StringVar(&clientPrefix, "client", "", "Filter by client name prefix")
	cmd.Flags().StringVar(&numberPrefix, "number", "", "Filter by order number prefix")
	cmd.Flags().StringVar(&fromDate, "from", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&toDate, "to", "", "End date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("admin")
	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	a, err := app.Bootstrap(configPath)
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	password, err := app.PromptPassword(fmt.Sprintf("Password for %s", adminName))
	if err != nil {
		return err
	}
	account, err := a.Authenticate(ctx, adminName, password)
	if err != nil {
		return err
	}
	if err := a.Authorize(account, permission.ResourceDashboard, permission.ActionRead); err != nil {
		return err
	}

	filter := order.ListFilter{
		ClientPrefix:      clientPrefix,
		OrderNumberPrefix: numberPrefix,
	}
	if filter.DateFrom, err = parseFlagDate(fromDate); err != nil {
		return err
	}
	if filter.DateTo, err = parseFlagDate(toDate); err != nil {
		return err
	}

	report, err := dashboard.NewGetDashboardUseCase(a.Orders, a.Logger).Execute(ctx, filter)
	if err != nil {
		return err
	}

	fmt.Println("overall")
	printStats("  ", report.Overall)
	for _, y := range report.Years {
		fmt.Printf("  %d: orders=%d items=%d value=%.2f\n",
			y.Year, y.Orders, y.Items, y.Value)
	}
	for _, u := range report.Users {
		fmt.Printf("\n%s\n", u.Username)
		printStats("  ", u.Stats)
		for _, p := range u.Periods {
			fmt.Printf("    %-14s orders=%d items=%d value=%.2f\n",
				p.Period.Label(true), p.Orders, p.Items, p.Value)
		}
		for _, m := range u.Months {
			fmt.Printf("    %d-%02d        orders=%d items=%d value=%.2f\n",
				m.Year, int(m.Month), m.Orders, m.Items, m.Value)
		}
	}
	return nil
}

func printStats(indent string, s dashboard.Stats) {
	fmt.Printf("%sorders=%d items=%d value=%.2f cut-time=%s active-days=%d\n",
		indent, s.Orders, s.Items, s.Value,
		(time.Duration(s.CutSeconds) * time.Second).String(), s.ActiveDays)
	fmt.Printf("%sorders/day=%.2f items/order=%.2f value/order=%.2f cut-time/day=%s\n",
		indent, s.OrdersPerDay, s.ItemsPerOrder, s.ValuePerOrder,
		(time.Duration(s.CutSecondsPerDay) * time.Second).String())
}

func parseFlagDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, apperrors.NewValidationError("dates must be YYYY-MM-DD", raw)
	}
	return &t, nil
}
