// Package orders implements the order management commands.
package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"procdesk/internal/application/order/usecases"
	"procdesk/internal/domain/order"
	"procdesk/internal/domain/user"
	"procdesk/internal/infrastructure/permission"
	"procdesk/internal/interfaces/cli/app"
	apperrors "procdesk/internal/shared/errors"
	"procdesk/internal/shared/ident"
)

var (
	configPath string
	username   string

	client         string
	orderNumber    string
	itemCount      string
	entryDate      string
	processingDate string
	cutTime        string
	notes          string
	value          string

	allUsers     bool
	clientPrefix string
	numberPrefix string
	fromDate     string
	toDate       string
	limit        int
	offset       int
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Manage processing orders",
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	cmd.PersistentFlags().StringVarP(&username, "user", "u", "", "Acting username (required)")
	_ = cmd.MarkPersistentFlagRequired("user")

	cmd.AddCommand(
		newAddCommand(),
		newUpdateCommand(),
		newDeleteCommand(),
		newListCommand(),
		newTotalsCommand(),
		newOptionsCommand(),
	)
	return cmd
}

func addFieldFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&client, "client", "", "Client name")
	cmd.Flags().StringVar(&orderNumber, "number", "", "Order number")
	cmd.Flags().StringVar(&itemCount, "items", "", "Item count")
	cmd.Flags().StringVar(&entryDate, "entry-date", "", "Entry date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&processingDate, "processing-date", "", "Processing date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&cutTime, "cut-time", "", "Cut time (HH:MM or HH:MM:SS)")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form notes")
	cmd.Flags().StringVar(&value, "value", "", "Order value (accepts 1234.56 and 1.234,56)")
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&allUsers, "all-users", false, "Query every operator's orders (administrators only)")
	cmd.Flags().StringVar(&clientPrefix, "client", "", "Filter by client name prefix")
	cmd.Flags().StringVar(&numberPrefix, "number", "", "Filter by order number prefix")
	cmd.Flags().StringVar(&fromDate, "from", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&toDate, "to", "", "End date (YYYY-MM-DD)")
}

func newAddCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Log a new order",
		RunE:  runAdd,
	}
	addFieldFlags(cmd)
	return cmd
}

func newUpdateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <record-id>",
		Short: "Edit an existing order",
		Args:  cobra.ExactArgs(1),
		RunE:  runUpdate,
	}
	addFieldFlags(cmd)
	return cmd
}

func newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <record-id>",
		Short: "Delete an order",
		Args:  cobra.ExactArgs(1),
		RunE:  runDelete,
	}
}

func newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List orders",
		RunE:  runList,
	}
	addFilterFlags(cmd)
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum rows to show")
	cmd.Flags().IntVar(&offset, "offset", 0, "Rows to skip")
	return cmd
}

func newTotalsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "totals",
		Short: "Sum orders, items and value for a selection",
		RunE:  runTotals,
	}
	addFilterFlags(cmd)
	return cmd
}

func newOptionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "options",
		Short: "Show the known clients, order numbers and billing periods",
		RunE:  runOptions,
	}
	cmd.Flags().BoolVar(&allUsers, "all-users", false, "Across every operator (administrators only)")
	return cmd
}

// authenticate prompts for the acting user's password and checks the
// action against the role policy.
func authenticate(ctx context.Context, a *app.App, action string) (*user.User, error) {
	password, err := app.PromptPassword("Password")
	if err != nil {
		return nil, err
	}
	account, err := a.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if err := a.Authorize(account, permission.ResourceOrder, action); err != nil {
		return nil, err
	}
	return account, nil
}

func scopeUsername(a *app.App, account *user.User) (string, error) {
	if !allUsers {
		return account.Name(), nil
	}
	if err := a.Authorize(account, permission.ResourceOrder, permission.ActionReadAll); err != nil {
		return "", err
	}
	return "", nil
}

func buildFilter() (order.ListFilter, error) {
	filter := order.ListFilter{
		ClientPrefix:      clientPrefix,
		OrderNumberPrefix: numberPrefix,
		Limit:             limit,
		Offset:            offset,
	}
	var err error
	if filter.DateFrom, err = parseFlagDate(fromDate); err != nil {
		return filter, err
	}
	if filter.DateTo, err = parseFlagDate(toDate); err != nil {
		return filter, err
	}
	return filter, nil
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

func input(owner string) order.Input {
	return order.Input{
		Username:       owner,
		Client:         client,
		OrderNumber:    orderNumber,
		ItemCount:      itemCount,
		EntryDate:      entryDate,
		ProcessingDate: processingDate,
		CutTime:        cutTime,
		Notes:          notes,
		Value:          value,
	}
}

// requireOwnRecord rejects cross-operator record access for non-admins.
func requireOwnRecord(a *app.App, account *user.User, recordID string) error {
	slug, _, ok := ident.DecodeRecordID(recordID)
	if !ok {
		return apperrors.NewValidationError("malformed record id", recordID)
	}
	if slug == ident.Slug(account.Name()) {
		return nil
	}
	return a.Authorize(account, permission.ResourceOrder, permission.ActionReadAll)
}

func runAdd(cmd *cobra.Command, args []string) error {
	a, err := app.Bootstrap(configPath)
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	account, err := authenticate(ctx, a, permission.ActionCreate)
	if err != nil {
		return err
	}

	result, err := usecases.NewCreateOrderUseCase(a.Orders, a.Logger).
		Execute(ctx, input(account.Name()))
	if err != nil {
		return err
	}
	fmt.Printf("created %s\n", result.RecordID)
	return nil
}

func runUpdate(cmd *cobra.Command, args []string) error {
	a, err := app.Bootstrap(configPath)
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	account, err := authenticate(ctx, a, permission.ActionUpdate)
	if err != nil {
		return err
	}
	if err := requireOwnRecord(a, account, args[0]); err != nil {
		return err
	}

	if _, err := usecases.NewUpdateOrderUseCase(a.Orders, a.Logger).
		Execute(ctx, args[0], input(account.Name())); err != nil {
		return err
	}
	fmt.Printf("updated %s\n", args[0])
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	a, err := app.Bootstrap(configPath)
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	account, err := authenticate(ctx, a, permission.ActionDelete)
	if err != nil {
		return err
	}
	if err := requireOwnRecord(a, account, args[0]); err != nil {
		return err
	}

	if err := usecases.NewDeleteOrderUseCase(a.Orders, a.Logger).Execute(ctx, args[0]); err != nil {
		return err
	}
	fmt.Printf("deleted %s\n", args[0])
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := app.Bootstrap(configPath)
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	account, err := authenticate(ctx, a, permission.ActionRead)
	if err != nil {
		return err
	}
	scope, err := scopeUsername(a, account)
	if err != nil {
		return err
	}
	filter, err := buildFilter()
	if err != nil {
		return err
	}

	found, err := usecases.NewListOrdersUseCase(a.Orders, a.Logger).
		Execute(ctx, usecases.ListOrdersCommand{Username: scope, Filter: filter})
	if err != nil {
		return err
	}

	for _, v := range found {
		o := v.Order
		processing := "-"
		if o.ProcessingDate() != nil {
			processing = o.ProcessingDate().Format("2006-01-02")
		}
		fmt.Printf("%-24s %-12s %-18s %-12s entry=%s proc=%s items=%d value=%.2f\n",
			v.RecordID, o.Username(), o.Client(), o.OrderNumber(),
			o.EntryDate().Format("2006-01-02"), processing,
			o.ItemCount(), o.Value())
	}
	fmt.Printf("%d order(s)\n", len(found))
	return nil
}

func runTotals(cmd *cobra.Command, args []string) error {
	a, err := app.Bootstrap(configPath)
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	account, err := authenticate(ctx, a, permission.ActionRead)
	if err != nil {
		return err
	}
	scope, err := scopeUsername(a, account)
	if err != nil {
		return err
	}
	filter, err := buildFilter()
	if err != nil {
		return err
	}

	totals, err := usecases.NewGetTotalsUseCase(a.Orders, a.Logger).
		Execute(ctx, usecases.GetTotalsCommand{Username: scope, Filter: filter})
	if err != nil {
		return err
	}
	fmt.Printf("orders=%d items=%d value=%.2f\n", totals.Orders, totals.Items, totals.Value)
	return nil
}

func runOptions(cmd *cobra.Command, args []string) error {
	a, err := app.Bootstrap(configPath)
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	account, err := authenticate(ctx, a, permission.ActionRead)
	if err != nil {
		return err
	}
	scope, err := scopeUsername(a, account)
	if err != nil {
		return err
	}

	options, err := usecases.NewListFilterOptionsUseCase(a.Orders, a.Logger).
		Execute(ctx, usecases.ListFilterOptionsCommand{Username: scope})
	if err != nil {
		return err
	}

	fmt.Println("clients:")
	for _, c := range options.Clients {
		fmt.Printf("  %s\n", c)
	}
	fmt.Println("order numbers:")
	for _, n := range options.OrderNumbers {
		fmt.Printf("  %s\n", n)
	}
	fmt.Println("billing periods:")
	for _, p := range options.Periods {
		fmt.Printf("  %s  (%s to %s)\n", p.Label(true),
			p.Start.Format("2006-01-02"), p.End.Format("2006-01-02"))
	}
	fmt.Println("years with processed orders:")
	for _, y := range options.Years {
		fmt.Printf("  %d (%d periods)\n", y, len(options.YearPeriods[y]))
	}
	return nil
}
