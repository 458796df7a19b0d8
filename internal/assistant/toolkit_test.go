package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mmynk/billminder/internal/alerts"
	"github.com/mmynk/billminder/internal/bills"
	"github.com/mmynk/billminder/internal/models"
	"github.com/mmynk/billminder/internal/service"
	"github.com/mmynk/billminder/internal/storage/memory"
)

var testNow = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

func dueIn(days int) string {
	return models.DateOf(testNow).AddDays(days).String()
}

func newTestToolkit(t *testing.T) (*Toolkit, *memory.Store) {
	t.Helper()
	backend := memory.New()
	store, err := bills.Open(context.Background(), backend,
		bills.WithClock(func() time.Time { return testNow }),
		bills.WithLocation(time.UTC),
	)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return NewToolkit(service.NewBillService(store, alerts.NewEngine(store), 7)), backend
}

func TestToolkitFlow(t *testing.T) {
	kit, _ := newTestToolkit(t)
	ctx := context.Background()

	t.Run("empty list", func(t *testing.T) {
		res, err := kit.ListBills(ctx, ListBillsInput{})
		if err != nil {
			t.Fatalf("ListBills failed: %v", err)
		}
		if res.Text != "No bills are being tracked yet." || res.Bills == nil {
			t.Errorf("unexpected result: %+v", res)
		}
	})

	t.Run("add bills", func(t *testing.T) {
		res, err := kit.AddBill(ctx, AddBillInput{Name: "Electric", Amount: "50", DueDate: dueIn(0), Provider: "PowerCo"})
		if err != nil {
			t.Fatalf("AddBill failed: %v", err)
		}
		if !strings.HasPrefix(res.Text, "Added Electric for $50.00 due "+dueIn(0)) {
			t.Errorf("unexpected text %q", res.Text)
		}
		for _, in := range []AddBillInput{
			{Name: "Phone Mobile", Amount: "40", DueDate: dueIn(3)},
			{Name: "Phone Landline", Amount: "19.99", DueDate: dueIn(5)},
			{Name: "Rent", Amount: "1500", DueDate: dueIn(-2)},
		} {
			if _, err := kit.AddBill(ctx, in); err != nil {
				t.Fatalf("AddBill(%s) failed: %v", in.Name, err)
			}
		}
	})

	t.Run("upcoming", func(t *testing.T) {
		res, err := kit.CheckUpcoming(ctx, CheckUpcomingInput{Days: 3})
		if err != nil {
			t.Fatalf("CheckUpcoming failed: %v", err)
		}
		if len(res.Bills) != 2 || !strings.HasPrefix(res.Text, "2 bills due in the next 3 days:") {
			t.Errorf("unexpected result: %q", res.Text)
		}
	})

	t.Run("overdue", func(t *testing.T) {
		res, err := kit.CheckOverdue(ctx, CheckOverdueInput{})
		if err != nil {
			t.Fatalf("CheckOverdue failed: %v", err)
		}
		if len(res.Bills) != 1 || !strings.Contains(res.Text, "Rent: $1500.00") || !strings.Contains(res.Text, "(overdue)") {
			t.Errorf("unexpected result: %q", res.Text)
		}
	})

	t.Run("alerts", func(t *testing.T) {
		res, err := kit.Alerts(ctx, AlertsInput{})
		if err != nil {
			t.Fatalf("Alerts failed: %v", err)
		}
		if res.Overdue != 1 || res.Critical != 1 || res.Upcoming != 2 {
			t.Errorf("unexpected counts: %+v", res)
		}
		if !strings.Contains(res.Text, "DUE TODAY: Electric ($50.00)") {
			t.Errorf("unexpected summary %q", res.Text)
		}
	})

	t.Run("ambiguous mark paid lists candidates", func(t *testing.T) {
		res, err := kit.MarkPaid(ctx, MarkPaidInput{BillName: "phone"})
		if err != nil {
			t.Fatalf("MarkPaid failed: %v", err)
		}
		if res.Paid != nil || len(res.Candidates) != 2 || !strings.Contains(res.Text, "Which one did you pay?") {
			t.Errorf("unexpected result: %+v", res)
		}
	})

	t.Run("mark paid", func(t *testing.T) {
		res, err := kit.MarkPaid(ctx, MarkPaidInput{BillName: "landline"})
		if err != nil {
			t.Fatalf("MarkPaid failed: %v", err)
		}
		if res.Paid == nil || res.Paid.Status != "paid" {
			t.Fatalf("expected paid bill, got %+v", res)
		}
		if res.Text != "Marked Phone Landline ($19.99) as paid on "+dueIn(0)+"." {
			t.Errorf("unexpected text %q", res.Text)
		}
	})

	t.Run("unknown bill is explained", func(t *testing.T) {
		_, err := kit.MarkPaid(ctx, MarkPaidInput{BillName: "rnet"})
		var toolErr *ToolError
		if !errors.As(err, &toolErr) {
			t.Fatalf("expected ToolError, got %v", err)
		}
		if !strings.Contains(toolErr.Text, "no such bill exists") || !strings.Contains(toolErr.Text, "did you mean Rent") {
			t.Errorf("unexpected explanation %q", toolErr.Text)
		}
	})

	t.Run("amount keeps every digit", func(t *testing.T) {
		res, err := kit.AddBill(ctx, AddBillInput{Name: "Mortgage", Amount: "12345678901234567.89", DueDate: dueIn(20)})
		if err != nil {
			t.Fatalf("AddBill failed: %v", err)
		}
		if res.Bill.Amount != "12345678901234567.89" {
			t.Errorf("amount was rounded: %q", res.Bill.Amount)
		}
	})

	t.Run("bad amount is explained", func(t *testing.T) {
		_, err := kit.AddBill(ctx, AddBillInput{Name: "Gas", Amount: "lots", DueDate: dueIn(1)})
		if err == nil || !strings.Contains(err.Error(), "the request was invalid") {
			t.Errorf("unexpected error %v", err)
		}
	})

	t.Run("bad date is explained", func(t *testing.T) {
		_, err := kit.AddBill(ctx, AddBillInput{Name: "Gas", Amount: "10", DueDate: "next friday"})
		if err == nil || !strings.Contains(err.Error(), "the request was invalid") {
			t.Errorf("unexpected error %v", err)
		}
	})
}

func TestPersistenceFailureIsExplained(t *testing.T) {
	kit, backend := newTestToolkit(t)
	backend.FailSaves(errors.New("disk full"))

	_, err := kit.AddBill(context.Background(), AddBillInput{Name: "Gas", Amount: "10", DueDate: dueIn(1)})
	if err == nil || !strings.Contains(err.Error(), "nothing was changed") {
		t.Errorf("unexpected error %v", err)
	}
}

func TestTools(t *testing.T) {
	kit, _ := newTestToolkit(t)
	tools, err := kit.Tools()
	if err != nil {
		t.Fatalf("Tools failed: %v", err)
	}

	byName := make(map[string]Tool)
	for _, tool := range tools {
		if tool.Parameters == nil || tool.Parameters.Type != "object" {
			t.Errorf("%s: expected object schema, got %+v", tool.Name, tool.Parameters)
		}
		byName[tool.Name] = tool
	}
	if len(byName) != 7 {
		t.Fatalf("expected 7 distinct tools, got %d", len(byName))
	}

	add := byName["add_bill"]
	if _, ok := add.Parameters.Properties["due_date"]; !ok {
		t.Errorf("add_bill schema is missing due_date: %+v", add.Parameters.Properties)
	}

	ctx := context.Background()
	reply, err := add.Call(ctx, json.RawMessage(`{"name":"Water","amount":"30.5","due_date":"`+dueIn(2)+`"}`))
	if err != nil {
		t.Fatalf("add_bill call failed: %v", err)
	}
	if !strings.HasPrefix(reply, "Added Water for $30.50") {
		t.Errorf("unexpected reply %q", reply)
	}

	reply, err = byName["list_bills"].Call(ctx, nil)
	if err != nil || !strings.Contains(reply, "Water") {
		t.Errorf("unexpected list reply %q, %v", reply, err)
	}

	if _, err := add.Call(ctx, json.RawMessage(`{"amount":"lots"}`)); err == nil {
		t.Error("expected an error for malformed arguments")
	}
}
