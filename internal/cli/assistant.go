package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmynk/billminder/internal/app"
	"github.com/mmynk/billminder/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the bill tools over MCP on stdin/stdout",
	Long: "Serve the bill tools to an MCP client such as a desktop assistant.\n" +
		"Tools act on the local database, or on --server when set.",
	Args: cobra.NoArgs,
	RunE: withSession(runMCP),
}

var chatCmd = &cobra.Command{
	Use:   "chat <message>",
	Short: "Ask about your bills in plain language",
	Args:  cobra.MinimumNArgs(1),
	RunE:  withSession(runChat),
}

func init() {
	rootCmd.AddCommand(mcpCmd, chatCmd)
}

func runMCP(cmd *cobra.Command, _ []string, s *session) error {
	return mcpserver.ServeStdio(cmd.Context(), mcpserver.New(s.toolkit, app.Version))
}

func runChat(cmd *cobra.Command, args []string, s *session) error {
	reply, err := s.chat(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return describe(err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), reply)
	return nil
}
