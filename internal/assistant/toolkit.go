// Package assistant exposes bill operations as natural-language tools.
// Every tool returns a short text reply for a person or a language model,
// along with structured data for programmatic callers.
package assistant

import (
	"context"
	"fmt"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/billminder/pkg/billapi"
	"github.com/mmynk/billminder/pkg/billapi/billapiconnect"
)

// Replier is implemented by every tool result.
type Replier interface {
	Reply() string
}

// Definition names and describes a tool.
type Definition struct {
	Name        string
	Description string
}

var (
	ListBillsDef = Definition{
		Name:        "list_bills",
		Description: "List every tracked bill with its amount, due date and status.",
	}
	CheckUpcomingDef = Definition{
		Name:        "check_upcoming_bills",
		Description: "List pending bills due within the next few days (7 by default).",
	}
	CheckOverdueDef = Definition{
		Name:        "check_overdue_bills",
		Description: "List bills whose due date has passed without payment. Marks late bills overdue.",
	}
	AddBillDef = Definition{
		Name:        "add_bill",
		Description: "Start tracking a new bill.",
	}
	MarkPaidDef = Definition{
		Name:        "mark_paid",
		Description: "Mark an unpaid bill as paid, finding it by name. Lists the candidates when the name matches several bills.",
	}
	DeleteBillDef = Definition{
		Name:        "delete_bill",
		Description: "Stop tracking a bill, by id.",
	}
	AlertsDef = Definition{
		Name:        "get_bill_alerts",
		Description: "Summarize overdue bills and bills due today, tomorrow and this week.",
	}
)

type ListBillsInput struct{}

type CheckUpcomingInput struct {
	Days int `json:"days,omitempty" jsonschema:"how many days ahead to look (default 7)"`
}

type CheckOverdueInput struct{}

type AddBillInput struct {
	Name          string `json:"name" jsonschema:"bill name, e.g. Electric"`
	Amount        string `json:"amount" jsonschema:"amount due in dollars as a decimal string, e.g. 49.99"`
	DueDate       string `json:"due_date" jsonschema:"due date as YYYY-MM-DD"`
	Provider      string `json:"provider,omitempty" jsonschema:"company the bill is paid to"`
	AccountNumber string `json:"account_number,omitempty" jsonschema:"account number with the provider"`
	AutoPay       bool   `json:"auto_pay_enabled,omitempty" jsonschema:"whether the provider charges automatically"`
}

type MarkPaidInput struct {
	BillName string `json:"bill_name" jsonschema:"name or part of the name of the bill"`
}

type DeleteBillInput struct {
	BillID string `json:"bill_id" jsonschema:"id of the bill to delete"`
}

type AlertsInput struct{}

// BillsResult is a list of bills.
type BillsResult struct {
	Text  string         `json:"text"`
	Bills []billapi.Bill `json:"bills"`
}

func (r BillsResult) Reply() string { return r.Text }

// BillResult is a single bill.
type BillResult struct {
	Text string       `json:"text"`
	Bill billapi.Bill `json:"bill"`
}

func (r BillResult) Reply() string { return r.Text }

// MarkPaidResult holds the paid bill, or the candidates when the name was
// ambiguous.
type MarkPaidResult struct {
	Text       string         `json:"text"`
	Paid       *billapi.Bill  `json:"paid,omitempty"`
	Candidates []billapi.Bill `json:"candidates"`
}

func (r MarkPaidResult) Reply() string { return r.Text }

// DeleteResult confirms a deletion.
type DeleteResult struct {
	Text string `json:"text"`
}

func (r DeleteResult) Reply() string { return r.Text }

// AlertsResult is the alert summary with per-tier counts.
type AlertsResult struct {
	Text     string `json:"text"`
	Overdue  int    `json:"overdue"`
	Critical int    `json:"critical"`
	Urgent   int    `json:"urgent"`
	Upcoming int    `json:"upcoming"`
}

func (r AlertsResult) Reply() string { return r.Text }

// Toolkit implements the tools against the bill service.
type Toolkit struct {
	client billapiconnect.BillServiceClient
}

// NewToolkit returns a Toolkit calling client. The client may be a remote
// Connect client or the in-process service.
func NewToolkit(client billapiconnect.BillServiceClient) *Toolkit {
	return &Toolkit{client: client}
}

func (k *Toolkit) ListBills(ctx context.Context, _ ListBillsInput) (BillsResult, error) {
	resp, err := k.client.ListBills(ctx, connect.NewRequest(&billapi.ListBillsRequest{}))
	if err != nil {
		return BillsResult{}, explain("list bills", err)
	}
	bills := nonNil(resp.Msg.Bills)
	if len(bills) == 0 {
		return BillsResult{Text: "No bills are being tracked yet.", Bills: bills}, nil
	}
	return BillsResult{
		Text:  fmt.Sprintf("Tracking %d %s:\n%s", len(bills), plural(len(bills), "bill", "bills"), formatBills(bills)),
		Bills: bills,
	}, nil
}

func (k *Toolkit) CheckUpcoming(ctx context.Context, in CheckUpcomingInput) (BillsResult, error) {
	req := &billapi.ListUpcomingRequest{}
	if in.Days > 0 {
		days := int32(in.Days)
		req.Days = &days
	}
	resp, err := k.client.ListUpcoming(ctx, connect.NewRequest(req))
	if err != nil {
		return BillsResult{}, explain("check upcoming bills", err)
	}
	bills := nonNil(resp.Msg.Bills)
	if len(bills) == 0 {
		return BillsResult{Text: fmt.Sprintf("No bills are due in the next %d days.", resp.Msg.Days), Bills: bills}, nil
	}
	return BillsResult{
		Text:  fmt.Sprintf("%d %s due in the next %d days:\n%s", len(bills), plural(len(bills), "bill", "bills"), resp.Msg.Days, formatBills(bills)),
		Bills: bills,
	}, nil
}

func (k *Toolkit) CheckOverdue(ctx context.Context, _ CheckOverdueInput) (BillsResult, error) {
	resp, err := k.client.ListOverdue(ctx, connect.NewRequest(&billapi.ListOverdueRequest{}))
	if err != nil {
		return BillsResult{}, explain("check overdue bills", err)
	}
	bills := nonNil(resp.Msg.Bills)
	if len(bills) == 0 {
		return BillsResult{Text: "No bills are overdue.", Bills: bills}, nil
	}
	return BillsResult{
		Text:  fmt.Sprintf("%d overdue %s:\n%s", len(bills), plural(len(bills), "bill", "bills"), formatBills(bills)),
		Bills: bills,
	}, nil
}

func (k *Toolkit) AddBill(ctx context.Context, in AddBillInput) (BillResult, error) {
	resp, err := k.client.CreateBill(ctx, connect.NewRequest(&billapi.CreateBillRequest{
		Name:           in.Name,
		Amount:         in.Amount,
		DueDate:        in.DueDate,
		Provider:       in.Provider,
		AccountNumber:  in.AccountNumber,
		AutoPayEnabled: in.AutoPay,
	}))
	if err != nil {
		return BillResult{}, explain("add the bill", err)
	}
	b := resp.Msg.Bill
	return BillResult{
		Text: fmt.Sprintf("Added %s for $%s due %s (id %s).", b.Name, b.Amount, b.DueDate, b.ID),
		Bill: b,
	}, nil
}

func (k *Toolkit) MarkPaid(ctx context.Context, in MarkPaidInput) (MarkPaidResult, error) {
	resp, err := k.client.PayBillByName(ctx, connect.NewRequest(&billapi.PayBillByNameRequest{Name: in.BillName}))
	if err != nil {
		return MarkPaidResult{}, explain("mark the bill paid", err)
	}
	if resp.Msg.Bill == nil {
		candidates := nonNil(resp.Msg.Candidates)
		return MarkPaidResult{
			Text: fmt.Sprintf("%q matches %d bills. Which one did you pay?\n%s",
				in.BillName, len(candidates), formatBills(candidates)),
			Candidates: candidates,
		}, nil
	}
	b := *resp.Msg.Bill
	return MarkPaidResult{
		Text:       fmt.Sprintf("Marked %s ($%s) as paid on %s.", b.Name, b.Amount, b.LastPaidDate),
		Paid:       &b,
		Candidates: []billapi.Bill{},
	}, nil
}

func (k *Toolkit) DeleteBill(ctx context.Context, in DeleteBillInput) (DeleteResult, error) {
	if _, err := k.client.DeleteBill(ctx, connect.NewRequest(&billapi.DeleteBillRequest{BillID: in.BillID})); err != nil {
		return DeleteResult{}, explain("delete the bill", err)
	}
	return DeleteResult{Text: fmt.Sprintf("Deleted bill %s.", in.BillID)}, nil
}

func (k *Toolkit) Alerts(ctx context.Context, _ AlertsInput) (AlertsResult, error) {
	resp, err := k.client.GetAlerts(ctx, connect.NewRequest(&billapi.GetAlertsRequest{}))
	if err != nil {
		return AlertsResult{}, explain("check bill alerts", err)
	}
	return AlertsResult{
		Text:     strings.TrimRight(resp.Msg.Summary, "\n"),
		Overdue:  len(resp.Msg.Overdue),
		Critical: len(resp.Msg.Critical),
		Urgent:   len(resp.Msg.Urgent),
		Upcoming: len(resp.Msg.Upcoming),
	}, nil
}

func formatBills(bills []billapi.Bill) string {
	var sb strings.Builder
	for _, b := range bills {
		fmt.Fprintf(&sb, "- %s: $%s due %s (%s)", b.Name, b.Amount, b.DueDate, b.Status)
		if b.Provider != "" {
			fmt.Fprintf(&sb, " via %s", b.Provider)
		}
		if b.AutoPayEnabled {
			sb.WriteString(", auto-pay")
		}
		fmt.Fprintf(&sb, " [id %s]\n", b.ID)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func nonNil(bills []billapi.Bill) []billapi.Bill {
	if bills == nil {
		return []billapi.Bill{}
	}
	return bills
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
