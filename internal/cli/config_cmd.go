package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmynk/billminder/internal/config"
)

var flagForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

func init() {
	configInitCmd.Flags().BoolVarP(&flagForce, "force", "f", false, "Overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func configPath() string {
	if flagConfig != "" {
		return flagConfig
	}
	return config.Path()
}

func runConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	path := configPath()

	fmt.Fprintf(out, "  Config file: %s\n", path)
	if config.Exists(path) {
		fmt.Fprintln(out, "  Status: loaded")
	} else {
		fmt.Fprintln(out, "  Status: using defaults (no config file)")
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  [Server]")
	fmt.Fprintf(out, "    Address:   %s\n", cfg.Server.Addr)
	fmt.Fprintf(out, "    MCP path:  %s\n", cfg.Server.MCPPath)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  [Storage]")
	fmt.Fprintf(out, "    Driver:    %s\n", cfg.Storage.Driver)
	fmt.Fprintf(out, "    Path:      %s\n", cfg.Storage.Path)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  [Bills]")
	fmt.Fprintf(out, "    Timezone:      %s\n", cfg.Bills.Timezone)
	fmt.Fprintf(out, "    Upcoming days: %d\n", cfg.Bills.UpcomingDays)
	fmt.Fprintf(out, "    Alert windows: %v\n", cfg.Alerts.Windows)
	if cfg.Reminders.Interval != "" {
		fmt.Fprintf(out, "    Reminders:     every %s\n", cfg.Reminders.Interval)
	} else {
		fmt.Fprintln(out, "    Reminders:     off")
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  [LLM]")
	fmt.Fprintf(out, "    Base URL:    %s\n", cfg.LLM.BaseURL)
	fmt.Fprintf(out, "    Model:       %s\n", cfg.LLM.Model)
	fmt.Fprintf(out, "    Temperature: %.2f\n", cfg.LLM.Temperature)
	fmt.Fprintf(out, "    Max steps:   %d\n", cfg.LLM.MaxSteps)
	if key := cfg.APIKey(); key != "" {
		fmt.Fprintf(out, "    API key:     %s\n", maskAPIKey(key))
	} else {
		fmt.Fprintln(out, "    API key:     not configured")
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  Run `billctl config init` to write a config file.")
	return nil
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	path := configPath()
	if config.Exists(path) && !flagForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.Save(path, config.Default()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Wrote "+path))
	return nil
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
