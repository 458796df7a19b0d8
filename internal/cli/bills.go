package cli

import (
	"errors"
	"fmt"
	"strings"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"

	"github.com/mmynk/billminder/pkg/billapi"
)

var (
	flagUpcomingDays int

	flagAddName     string
	flagAddAmount   string
	flagAddDue      string
	flagAddProvider string
	flagAddAccount  string
	flagAddAutoPay  bool

	flagPayName string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every tracked bill",
	Args:  cobra.NoArgs,
	RunE:  withSession(runList),
}

var upcomingCmd = &cobra.Command{
	Use:   "upcoming",
	Short: "List pending bills due soon",
	Args:  cobra.NoArgs,
	RunE:  withSession(runUpcoming),
}

var overdueCmd = &cobra.Command{
	Use:   "overdue",
	Short: "List overdue bills, marking late ones overdue",
	Args:  cobra.NoArgs,
	RunE:  withSession(runOverdue),
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Start tracking a bill",
	Args:  cobra.NoArgs,
	RunE:  withSession(runAdd),
}

var payCmd = &cobra.Command{
	Use:   "pay [bill-id]",
	Short: "Mark a bill paid, by id or with --name",
	Args:  cobra.MaximumNArgs(1),
	RunE:  withSession(runPay),
}

var deleteCmd = &cobra.Command{
	Use:   "delete <bill-id>",
	Short: "Stop tracking a bill",
	Args:  cobra.ExactArgs(1),
	RunE:  withSession(runDelete),
}

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Show overdue bills and bills due this week",
	Args:  cobra.NoArgs,
	RunE:  withSession(runAlerts),
}

func init() {
	upcomingCmd.Flags().IntVarP(&flagUpcomingDays, "days", "d", 0, "Days to look ahead (default bills.upcoming_days)")

	addCmd.Flags().StringVar(&flagAddName, "name", "", "Bill name")
	addCmd.Flags().StringVar(&flagAddAmount, "amount", "", "Amount due, e.g. 49.99")
	addCmd.Flags().StringVar(&flagAddDue, "due", "", "Due date (YYYY-MM-DD)")
	addCmd.Flags().StringVar(&flagAddProvider, "provider", "", "Company the bill is paid to")
	addCmd.Flags().StringVar(&flagAddAccount, "account", "", "Account number with the provider")
	addCmd.Flags().BoolVar(&flagAddAutoPay, "autopay", false, "The provider charges automatically")
	_ = addCmd.MarkFlagRequired("name")
	_ = addCmd.MarkFlagRequired("amount")
	_ = addCmd.MarkFlagRequired("due")

	payCmd.Flags().StringVarP(&flagPayName, "name", "n", "", "Find the unpaid bill by name instead of id")

	rootCmd.AddCommand(listCmd, upcomingCmd, overdueCmd, addCmd, payCmd, deleteCmd, alertsCmd)
}

func newRequest[T any](msg *T) *connect.Request[T] {
	return connect.NewRequest(msg)
}

func runList(cmd *cobra.Command, _ []string, s *session) error {
	resp, err := s.bills.ListBills(cmd.Context(), newRequest(&billapi.ListBillsRequest{}))
	if err != nil {
		return describe(err)
	}
	fmt.Fprint(cmd.OutOrStdout(), RenderBills("Bills", resp.Msg.Bills, "No bills are being tracked yet."))
	return nil
}

func runUpcoming(cmd *cobra.Command, _ []string, s *session) error {
	req := &billapi.ListUpcomingRequest{}
	if cmd.Flags().Changed("days") {
		days := int32(flagUpcomingDays)
		req.Days = &days
	}
	resp, err := s.bills.ListUpcoming(cmd.Context(), newRequest(req))
	if err != nil {
		return describe(err)
	}
	title := fmt.Sprintf("Due in the next %d days", resp.Msg.Days)
	empty := fmt.Sprintf("No bills are due in the next %d days.", resp.Msg.Days)
	fmt.Fprint(cmd.OutOrStdout(), RenderBills(title, resp.Msg.Bills, empty))
	return nil
}

func runOverdue(cmd *cobra.Command, _ []string, s *session) error {
	resp, err := s.bills.ListOverdue(cmd.Context(), newRequest(&billapi.ListOverdueRequest{}))
	if err != nil {
		return describe(err)
	}
	fmt.Fprint(cmd.OutOrStdout(), RenderBills("Overdue", resp.Msg.Bills, "No bills are overdue."))
	return nil
}

func runAdd(cmd *cobra.Command, _ []string, s *session) error {
	resp, err := s.bills.CreateBill(cmd.Context(), newRequest(&billapi.CreateBillRequest{
		Name:           flagAddName,
		Amount:         flagAddAmount,
		DueDate:        flagAddDue,
		Provider:       flagAddProvider,
		AccountNumber:  flagAddAccount,
		AutoPayEnabled: flagAddAutoPay,
	}))
	if err != nil {
		return describe(err)
	}
	fmt.Fprint(cmd.OutOrStdout(), RenderBill("Added", resp.Msg.Bill))
	return nil
}

func runPay(cmd *cobra.Command, args []string, s *session) error {
	switch {
	case flagPayName != "" && len(args) > 0:
		return errors.New("give either a bill id or --name, not both")
	case flagPayName != "":
		resp, err := s.bills.PayBillByName(cmd.Context(), newRequest(&billapi.PayBillByNameRequest{Name: flagPayName}))
		if err != nil {
			return describe(err)
		}
		if resp.Msg.Bill == nil {
			fmt.Fprint(cmd.OutOrStdout(), RenderBills(
				fmt.Sprintf("%q matches several bills; pay one by id", flagPayName),
				resp.Msg.Candidates, "No candidates."))
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), RenderBill("Paid", *resp.Msg.Bill))
		return nil
	case len(args) == 1:
		resp, err := s.bills.PayBill(cmd.Context(), newRequest(&billapi.PayBillRequest{BillID: args[0]}))
		if err != nil {
			return describe(err)
		}
		fmt.Fprint(cmd.OutOrStdout(), RenderBill("Paid", resp.Msg.Bill))
		return nil
	default:
		return errors.New("give a bill id or --name")
	}
}

func runDelete(cmd *cobra.Command, args []string, s *session) error {
	if _, err := s.bills.DeleteBill(cmd.Context(), newRequest(&billapi.DeleteBillRequest{BillID: args[0]})); err != nil {
		return describe(err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Deleted bill "+args[0]))
	return nil
}

func runAlerts(cmd *cobra.Command, _ []string, s *session) error {
	resp, err := s.bills.GetAlerts(cmd.Context(), newRequest(&billapi.GetAlertsRequest{}))
	if err != nil {
		return describe(err)
	}
	fmt.Fprint(cmd.OutOrStdout(), RenderAlerts(resp.Msg))
	return nil
}

// describe strips the Connect code prefix from service errors.
func describe(err error) error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		msg := connectErr.Message()
		if msg == "" {
			msg = connectErr.Code().String()
		}
		return errors.New(strings.TrimSpace(msg))
	}
	return err
}
