// Package cli implements the billctl commands.
package cli

import (
	"context"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmynk/billminder/internal/app"
	"github.com/mmynk/billminder/internal/assistant"
	"github.com/mmynk/billminder/internal/config"
	"github.com/mmynk/billminder/pkg/billapi"
	"github.com/mmynk/billminder/pkg/billapi/billapiconnect"
	"github.com/mmynk/billminder/pkg/logging"
)

var (
	flagConfig  string
	flagDB      string
	flagDriver  string
	flagServer  string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:          "billctl",
	Short:        "Track recurring bills",
	Long:         "Track recurring bills, see what is due or overdue, and mark bills paid.",
	SilenceUsage: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Config file (default $BILLMINDER_CONFIG or the XDG config dir)")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "Bill database path, overrides storage.path")
	rootCmd.PersistentFlags().StringVar(&flagDriver, "driver", "", "Storage driver: json, sqlite or memory")
	rootCmd.PersistentFlags().StringVarP(&flagServer, "server", "s", "", "Talk to a running billminder server at this URL instead of opening the database")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log at the configured level instead of warnings only")
}

// loadConfig reads the config file and applies the persistent flag
// overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return config.Config{}, err
	}
	if flagDriver != "" {
		cfg.Storage.Driver = flagDriver
	}
	if flagDB != "" {
		cfg.Storage.Path = flagDB
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	level := "warn"
	if flagVerbose {
		level = cfg.Log.Level
	}
	logging.Configure(cmd.ErrOrStderr(), level, cfg.Log.Format)
	return cfg, nil
}

// session is what a command talks to: either a local App or a remote
// server.
type session struct {
	bills   billapiconnect.BillServiceClient
	toolkit *assistant.Toolkit
	chat    func(ctx context.Context, message string) (string, error)
	close   func() error
}

func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	if flagServer != "" {
		client := billapiconnect.NewBillServiceClient(http.DefaultClient, flagServer)
		agentClient := billapiconnect.NewAgentServiceClient(http.DefaultClient, flagServer)
		return &session{
			bills:   client,
			toolkit: assistant.NewToolkit(client),
			chat: func(ctx context.Context, message string) (string, error) {
				resp, err := agentClient.Chat(ctx, newRequest(&billapi.ChatRequest{Message: message}))
				if err != nil {
					return "", err
				}
				return resp.Msg.Response, nil
			},
			close: func() error { return nil },
		}, nil
	}

	a, err := app.New(cmd.Context(), cfg)
	if err != nil {
		return nil, err
	}
	return &session{
		bills:   a.Bills,
		toolkit: a.Toolkit,
		chat: func(ctx context.Context, message string) (string, error) {
			ag, err := a.Agent()
			if err != nil {
				return "", err
			}
			return ag.Run(ctx, message)
		},
		close: a.Close,
	}, nil
}

// withSession opens a session for the duration of fn.
func withSession(fn func(cmd *cobra.Command, args []string, s *session) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()
		return fn(cmd, args, s)
	}
}
