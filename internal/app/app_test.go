package app

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/billminder/internal/config"
	"github.com/mmynk/billminder/internal/models"
	"github.com/mmynk/billminder/internal/storage/memory"
	"github.com/mmynk/billminder/pkg/billapi"
	"github.com/mmynk/billminder/pkg/billapi/billapiconnect"
)

var testNow = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

// fakeLLM answers every chat completion with a fixed reply.
func fakeLLM(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"c1","object":"chat.completion","created":1,"model":"test",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"`+reply+`"}}]}`)
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestApp(t *testing.T, cfg config.Config) *App {
	t.Helper()
	a, err := New(context.Background(), cfg,
		WithBackend(memory.New()),
		WithClock(func() time.Time { return testNow }),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Storage.Driver = "memory"
	cfg.Bills.Timezone = "UTC"
	return cfg
}

func TestHandler(t *testing.T) {
	llm := fakeLLM(t, "You have one bill.")
	cfg := testConfig()
	cfg.LLM.BaseURL = llm.URL + "/"
	a := newTestApp(t, cfg)

	handler, err := a.Handler()
	if err != nil {
		t.Fatalf("Handler failed: %v", err)
	}
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	ctx := context.Background()

	t.Run("create and list bills", func(t *testing.T) {
		client := billapiconnect.NewBillServiceClient(http.DefaultClient, server.URL)
		_, err := client.CreateBill(ctx, connect.NewRequest(&billapi.CreateBillRequest{
			Name:    "Electric",
			Amount:  "50",
			DueDate: models.DateOf(testNow).String(),
		}))
		if err != nil {
			t.Fatalf("CreateBill failed: %v", err)
		}
		resp, err := client.GetAlerts(ctx, connect.NewRequest(&billapi.GetAlertsRequest{}))
		if err != nil {
			t.Fatalf("GetAlerts failed: %v", err)
		}
		if len(resp.Msg.Critical) != 1 {
			t.Errorf("expected one critical alert, got %+v", resp.Msg)
		}
	})

	t.Run("chat", func(t *testing.T) {
		client := billapiconnect.NewAgentServiceClient(http.DefaultClient, server.URL)
		resp, err := client.Chat(ctx, connect.NewRequest(&billapi.ChatRequest{Message: "what do I owe?"}))
		if err != nil {
			t.Fatalf("Chat failed: %v", err)
		}
		if resp.Msg.Response != "You have one bill." {
			t.Errorf("unexpected response %q", resp.Msg.Response)
		}
	})

	t.Run("healthz", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/healthz")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected 200, got %d", resp.StatusCode)
		}
		if resp.Header.Get("X-Request-Id") == "" {
			t.Error("expected a request id header")
		}
	})

	t.Run("metrics", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/metrics")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		text := string(body)
		for _, want := range []string{
			`billminder_rpc_requests_total{code="ok",procedure="/billminder.v1.BillService/CreateBill"} 1`,
			`billminder_bills{status="pending"} 1`,
			`billminder_alerts{tier="critical"} 1`,
		} {
			if !strings.Contains(text, want) {
				t.Errorf("metrics missing %q", want)
			}
		}
	})
}

func TestOpenBackend(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		driver  string
		path    string
		wantErr bool
	}{
		{"json", filepath.Join(dir, "bills_db.json"), false},
		{"sqlite", filepath.Join(dir, "bills.db"), false},
		{"memory", "", false},
		{"mongo", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			backend, err := OpenBackend(config.StorageConfig{Driver: tt.driver, Path: tt.path})
			if tt.wantErr {
				if err == nil {
					t.Error("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("OpenBackend failed: %v", err)
			}
			defer backend.Close()
			loaded, err := backend.Load(context.Background())
			if err != nil || len(loaded) != 0 {
				t.Errorf("expected an empty backend, got %v, %v", loaded, err)
			}
		})
	}
}

func TestRemindersUseConfiguredInterval(t *testing.T) {
	cfg := testConfig()
	cfg.Reminders.Interval = "bogus"
	a := newTestApp(t, testConfig())
	a.Config = cfg
	if _, err := a.Reminders(); err == nil {
		t.Error("expected an error for a bad interval")
	}

	a.Config.Reminders.Interval = ""
	loop, err := a.Reminders()
	if err != nil {
		t.Fatalf("Reminders failed: %v", err)
	}
	if _, ok := loop.Check(context.Background()); !ok {
		t.Error("expected a successful check on an empty store")
	}
}
