// Package app wires the configured backend, bill store, alert engine, Connect
// services and assistant tools together for the binaries.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mmynk/billminder/internal/agent"
	"github.com/mmynk/billminder/internal/alerts"
	"github.com/mmynk/billminder/internal/assistant"
	"github.com/mmynk/billminder/internal/bills"
	"github.com/mmynk/billminder/internal/config"
	"github.com/mmynk/billminder/internal/mcpserver"
	"github.com/mmynk/billminder/internal/metrics"
	"github.com/mmynk/billminder/internal/middleware"
	"github.com/mmynk/billminder/internal/reminder"
	"github.com/mmynk/billminder/internal/service"
	"github.com/mmynk/billminder/internal/storage"
	"github.com/mmynk/billminder/internal/storage/jsonfile"
	"github.com/mmynk/billminder/internal/storage/memory"
	"github.com/mmynk/billminder/internal/storage/sqlite"
	"github.com/mmynk/billminder/pkg/billapi/billapiconnect"
)

// Version is reported to MCP clients.
var Version = "dev"

// App holds the wired components. Build it with New and release it with
// Close.
type App struct {
	Config  config.Config
	Metrics *metrics.Metrics
	Store   *bills.Store
	Engine  *alerts.Engine
	Bills   *service.BillService
	Toolkit *assistant.Toolkit

	agent *agent.Agent
}

// Option adjusts how New builds the App.
type Option func(*options)

type options struct {
	backend storage.Store
	now     func() time.Time
}

// WithBackend uses backend instead of the configured storage driver.
func WithBackend(backend storage.Store) Option {
	return func(o *options) { o.backend = backend }
}

// WithClock sets the store's clock.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New opens storage and builds every component from cfg.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	backend := o.backend
	if backend == nil {
		backend, err = OpenBackend(cfg.Storage)
		if err != nil {
			return nil, err
		}
	}

	m := metrics.New()
	storeOpts := []bills.Option{
		bills.WithLocation(loc),
		bills.WithObserver(m),
	}
	if o.now != nil {
		storeOpts = append(storeOpts, bills.WithClock(o.now))
	}
	store, err := bills.Open(ctx, backend, storeOpts...)
	if err != nil {
		backend.Close()
		return nil, err
	}

	engine := alerts.NewEngine(store,
		alerts.WithWindows(cfg.Alerts.Windows),
		alerts.WithObserver(m),
	)
	billSvc := service.NewBillService(store, engine, cfg.Bills.UpcomingDays)

	slog.Info("Bill store ready",
		"driver", cfg.Storage.Driver,
		"path", cfg.Storage.Path,
		"bills", len(store.List()),
	)

	return &App{
		Config:  cfg,
		Metrics: m,
		Store:   store,
		Engine:  engine,
		Bills:   billSvc,
		Toolkit: assistant.NewToolkit(billSvc),
	}, nil
}

// OpenBackend returns the storage driver named in cfg.
func OpenBackend(cfg config.StorageConfig) (storage.Store, error) {
	switch cfg.Driver {
	case "json", "":
		return jsonfile.New(cfg.Path)
	case "sqlite":
		return sqlite.New(cfg.Path)
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// Agent returns the chat agent, building it on first use.
func (a *App) Agent() (*agent.Agent, error) {
	if a.agent != nil {
		return a.agent, nil
	}
	tools, err := a.Toolkit.Tools()
	if err != nil {
		return nil, err
	}
	ag, err := agent.New(agent.Config{
		BaseURL:     a.Config.LLM.BaseURL,
		APIKey:      a.Config.APIKey(),
		Model:       a.Config.LLM.Model,
		Temperature: a.Config.LLM.Temperature,
		MaxSteps:    a.Config.LLM.MaxSteps,
		Today:       func() string { return a.Store.Today().String() },
	}, tools)
	if err != nil {
		return nil, err
	}
	a.agent = ag
	return ag, nil
}

// MCPServer returns an MCP server exposing the assistant tools.
func (a *App) MCPServer() *mcp.Server {
	return mcpserver.New(a.Toolkit, Version)
}

// Reminders returns the periodic reminder loop for the configured interval.
func (a *App) Reminders() (*reminder.Loop, error) {
	interval, err := a.Config.ReminderInterval()
	if err != nil {
		return nil, err
	}
	return reminder.New(a.Engine, interval, slog.Default()), nil
}

// Handler returns the HTTP handler serving the Connect services, MCP,
// metrics and health checks.
func (a *App) Handler() (http.Handler, error) {
	interceptors := connect.WithInterceptors(
		middleware.LoggingInterceptor(),
		middleware.MetricsInterceptor(a.Metrics),
	)

	mux := http.NewServeMux()

	billPath, billHandler := billapiconnect.NewBillServiceHandler(a.Bills, interceptors)
	mux.Handle(billPath, billHandler)

	ag, err := a.Agent()
	if err != nil {
		return nil, fmt.Errorf("build agent: %w", err)
	}
	agentPath, agentHandler := billapiconnect.NewAgentServiceHandler(service.NewAgentService(ag), interceptors)
	mux.Handle(agentPath, agentHandler)

	mcpPath := a.Config.Server.MCPPath
	if mcpPath == "" {
		mcpPath = "/mcp"
	}
	mux.Handle(mcpPath, mcpserver.HTTPHandler(a.MCPServer()))
	mux.Handle("/metrics", a.Metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	return middleware.RequestID(middleware.HTTPLogging(middleware.CORS(mux))), nil
}

// Close releases the store and its backend.
func (a *App) Close() error {
	if a.Store == nil {
		return errors.New("app: not opened")
	}
	return a.Store.Close()
}
