package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/billminder/internal/alerts"
	"github.com/mmynk/billminder/internal/bills"
	"github.com/mmynk/billminder/internal/middleware"
	"github.com/mmynk/billminder/internal/models"
	"github.com/mmynk/billminder/internal/storage/sqlite"
	"github.com/mmynk/billminder/pkg/billapi"
	"github.com/mmynk/billminder/pkg/billapi/billapiconnect"
)

// Fixed "today" for every test in this package.
var testNow = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

func dueIn(days int) string {
	return models.DateOf(testNow).AddDays(days).String()
}

// setupTestServer creates a test server backed by a temporary SQLite database.
func setupTestServer(t *testing.T) billapiconnect.BillServiceClient {
	t.Helper()

	backend, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create backend: %v", err)
	}
	store, err := bills.Open(context.Background(), backend,
		bills.WithClock(func() time.Time { return testNow }),
		bills.WithLocation(time.UTC),
	)
	if err != nil {
		backend.Close()
		t.Fatalf("failed to open store: %v", err)
	}

	svc := NewBillService(store, alerts.NewEngine(store), 0)
	path, handler := billapiconnect.NewBillServiceHandler(svc,
		connect.WithInterceptors(middleware.LoggingInterceptor()),
	)

	mux := http.NewServeMux()
	mux.Handle(path, handler)
	server := httptest.NewServer(mux)

	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return billapiconnect.NewBillServiceClient(http.DefaultClient, server.URL)
}

func createBill(t *testing.T, client billapiconnect.BillServiceClient, name, amount, due string) billapi.Bill {
	t.Helper()
	resp, err := client.CreateBill(context.Background(), connect.NewRequest(&billapi.CreateBillRequest{
		Name:     name,
		Amount:   amount,
		DueDate:  due,
		Provider: "Acme",
	}))
	if err != nil {
		t.Fatalf("CreateBill(%s) failed: %v", name, err)
	}
	return resp.Msg.Bill
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Errorf("expected code %s, got %s (%v)", want, got, err)
	}
}

func TestCreateBill(t *testing.T) {
	client := setupTestServer(t)
	ctx := context.Background()

	t.Run("creates a pending bill", func(t *testing.T) {
		bill := createBill(t, client, "Electric", "120.5", dueIn(5))
		if bill.ID == "" {
			t.Error("expected an id")
		}
		if bill.Status != "pending" || bill.Amount != "120.50" || bill.DueDate != dueIn(5) {
			t.Errorf("unexpected bill: %+v", bill)
		}
		if bill.LastPaidDate != "" {
			t.Errorf("new bill must not have a paid date, got %q", bill.LastPaidDate)
		}
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		cases := []billapi.CreateBillRequest{
			{Name: "Bad date", Amount: "10", DueDate: "03/15/2025"},
			{Name: "Bad amount", Amount: "ten", DueDate: dueIn(1)},
			{Name: "", Amount: "10", DueDate: dueIn(1)},
		}
		for _, c := range cases {
			_, err := client.CreateBill(ctx, connect.NewRequest(&c))
			assertCode(t, err, connect.CodeInvalidArgument)
		}
	})
}

func TestGetUpdateDeleteBill(t *testing.T) {
	client := setupTestServer(t)
	ctx := context.Background()
	bill := createBill(t, client, "Water", "30", dueIn(2))

	got, err := client.GetBill(ctx, connect.NewRequest(&billapi.GetBillRequest{BillID: bill.ID}))
	if err != nil {
		t.Fatalf("GetBill failed: %v", err)
	}
	if got.Msg.Bill.Name != "Water" {
		t.Errorf("unexpected bill: %+v", got.Msg.Bill)
	}

	changed := got.Msg.Bill
	changed.Amount = "35.25"
	changed.AccountNumber = "W-9"
	updated, err := client.UpdateBill(ctx, connect.NewRequest(&billapi.UpdateBillRequest{BillID: bill.ID, Bill: changed}))
	if err != nil {
		t.Fatalf("UpdateBill failed: %v", err)
	}
	if updated.Msg.Bill.Amount != "35.25" || updated.Msg.Bill.AccountNumber != "W-9" {
		t.Errorf("unexpected update: %+v", updated.Msg.Bill)
	}

	if _, err := client.DeleteBill(ctx, connect.NewRequest(&billapi.DeleteBillRequest{BillID: bill.ID})); err != nil {
		t.Fatalf("DeleteBill failed: %v", err)
	}
	_, err = client.GetBill(ctx, connect.NewRequest(&billapi.GetBillRequest{BillID: bill.ID}))
	assertCode(t, err, connect.CodeNotFound)

	_, err = client.DeleteBill(ctx, connect.NewRequest(&billapi.DeleteBillRequest{BillID: bill.ID}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestListUpcomingAndOverdue(t *testing.T) {
	client := setupTestServer(t)
	ctx := context.Background()
	createBill(t, client, "Week", "1", dueIn(7))
	createBill(t, client, "Today", "1", dueIn(0))
	createBill(t, client, "Far", "1", dueIn(12))
	late := createBill(t, client, "Late", "1", dueIn(-3))

	t.Run("default window", func(t *testing.T) {
		resp, err := client.ListUpcoming(ctx, connect.NewRequest(&billapi.ListUpcomingRequest{}))
		if err != nil {
			t.Fatalf("ListUpcoming failed: %v", err)
		}
		if resp.Msg.Days != DefaultUpcomingDays {
			t.Errorf("expected default days, got %d", resp.Msg.Days)
		}
		if len(resp.Msg.Bills) != 2 || resp.Msg.Bills[0].Name != "Today" || resp.Msg.Bills[1].Name != "Week" {
			t.Errorf("unexpected bills: %+v", resp.Msg.Bills)
		}
	})

	t.Run("explicit window", func(t *testing.T) {
		days := int32(30)
		resp, err := client.ListUpcoming(ctx, connect.NewRequest(&billapi.ListUpcomingRequest{Days: &days}))
		if err != nil {
			t.Fatalf("ListUpcoming failed: %v", err)
		}
		if len(resp.Msg.Bills) != 3 {
			t.Errorf("expected 3 bills, got %d", len(resp.Msg.Bills))
		}
	})

	t.Run("negative window", func(t *testing.T) {
		days := int32(-1)
		_, err := client.ListUpcoming(ctx, connect.NewRequest(&billapi.ListUpcomingRequest{Days: &days}))
		assertCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("overdue", func(t *testing.T) {
		for range 2 {
			resp, err := client.ListOverdue(ctx, connect.NewRequest(&billapi.ListOverdueRequest{}))
			if err != nil {
				t.Fatalf("ListOverdue failed: %v", err)
			}
			if len(resp.Msg.Bills) != 1 || resp.Msg.Bills[0].ID != late.ID || resp.Msg.Bills[0].Status != "overdue" {
				t.Errorf("unexpected overdue bills: %+v", resp.Msg.Bills)
			}
		}
	})
}

func TestGetAlerts(t *testing.T) {
	client := setupTestServer(t)
	ctx := context.Background()

	t.Run("empty", func(t *testing.T) {
		resp, err := client.GetAlerts(ctx, connect.NewRequest(&billapi.GetAlertsRequest{}))
		if err != nil {
			t.Fatalf("GetAlerts failed: %v", err)
		}
		if resp.Msg.Summary != alerts.NoAlertsMessage {
			t.Errorf("unexpected summary %q", resp.Msg.Summary)
		}
		if resp.Msg.Critical == nil || len(resp.Msg.Critical) != 0 {
			t.Errorf("expected empty critical list, got %v", resp.Msg.Critical)
		}
	})

	t.Run("due today", func(t *testing.T) {
		createBill(t, client, "Electric", "50.00", dueIn(0))
		resp, err := client.GetAlerts(ctx, connect.NewRequest(&billapi.GetAlertsRequest{}))
		if err != nil {
			t.Fatalf("GetAlerts failed: %v", err)
		}
		if len(resp.Msg.Critical) != 1 || resp.Msg.Critical[0].Message != "DUE TODAY: Electric ($50.00)" {
			t.Errorf("unexpected critical alerts: %+v", resp.Msg.Critical)
		}
		if !strings.Contains(resp.Msg.Summary, "⚠️ DUE TODAY:\n  DUE TODAY: Electric ($50.00)") {
			t.Errorf("unexpected summary:\n%s", resp.Msg.Summary)
		}
	})
}

func TestPayBill(t *testing.T) {
	client := setupTestServer(t)
	ctx := context.Background()
	bill := createBill(t, client, "Internet", "59.99", dueIn(3))

	resp, err := client.PayBill(ctx, connect.NewRequest(&billapi.PayBillRequest{BillID: bill.ID}))
	if err != nil {
		t.Fatalf("PayBill failed: %v", err)
	}
	if resp.Msg.Bill.Status != "paid" || resp.Msg.Bill.LastPaidDate != dueIn(0) {
		t.Errorf("unexpected paid bill: %+v", resp.Msg.Bill)
	}

	_, err = client.PayBill(ctx, connect.NewRequest(&billapi.PayBillRequest{BillID: "missing"}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestPayBillByName(t *testing.T) {
	client := setupTestServer(t)
	ctx := context.Background()
	createBill(t, client, "Phone Mobile", "40", dueIn(2))
	createBill(t, client, "Phone Landline", "20", dueIn(4))
	gym := createBill(t, client, "Gym", "25", dueIn(5))

	t.Run("ambiguous lists candidates", func(t *testing.T) {
		resp, err := client.PayBillByName(ctx, connect.NewRequest(&billapi.PayBillByNameRequest{Name: "phone"}))
		if err != nil {
			t.Fatalf("PayBillByName failed: %v", err)
		}
		if resp.Msg.Bill != nil || len(resp.Msg.Candidates) != 2 {
			t.Errorf("expected 2 candidates and no bill, got %+v", resp.Msg)
		}
	})

	t.Run("unique match pays", func(t *testing.T) {
		resp, err := client.PayBillByName(ctx, connect.NewRequest(&billapi.PayBillByNameRequest{Name: "GYM"}))
		if err != nil {
			t.Fatalf("PayBillByName failed: %v", err)
		}
		if resp.Msg.Bill == nil || resp.Msg.Bill.ID != gym.ID || resp.Msg.Bill.Status != "paid" {
			t.Errorf("unexpected response: %+v", resp.Msg)
		}
	})

	t.Run("no match", func(t *testing.T) {
		_, err := client.PayBillByName(ctx, connect.NewRequest(&billapi.PayBillByNameRequest{Name: "mortgage"}))
		assertCode(t, err, connect.CodeNotFound)
	})
}

type stubAgent struct {
	reply string
	err   error
}

func (s stubAgent) Run(ctx context.Context, message string) (string, error) {
	return s.reply + message, s.err
}

func TestAgentServiceChat(t *testing.T) {
	newClient := func(agent Chatter) billapiconnect.AgentServiceClient {
		path, handler := billapiconnect.NewAgentServiceHandler(NewAgentService(agent))
		mux := http.NewServeMux()
		mux.Handle(path, handler)
		server := httptest.NewServer(mux)
		t.Cleanup(server.Close)
		return billapiconnect.NewAgentServiceClient(http.DefaultClient, server.URL)
	}
	ctx := context.Background()

	resp, err := newClient(stubAgent{reply: "echo: "}).Chat(ctx, connect.NewRequest(&billapi.ChatRequest{Message: "hi"}))
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if resp.Msg.Response != "echo: hi" {
		t.Errorf("unexpected response %q", resp.Msg.Response)
	}

	_, err = newClient(stubAgent{}).Chat(ctx, connect.NewRequest(&billapi.ChatRequest{Message: "  "}))
	assertCode(t, err, connect.CodeInvalidArgument)

	_, err = newClient(stubAgent{err: errors.New("model offline")}).Chat(ctx, connect.NewRequest(&billapi.ChatRequest{Message: "hi"}))
	assertCode(t, err, connect.CodeUnavailable)
}
