// Command grantfunnel serves the grant funnel web UI and talks to the
// grant funnel backend from the terminal.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tendant/grantfunnel/internal/config"
	"github.com/tendant/grantfunnel/pkg/api"
)

// app holds state shared by every command, filled in before a command runs.
type app struct {
	apiURL  string
	timeout time.Duration

	cfg    *config.Config
	logger *slog.Logger
	client *api.Client
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "grantfunnel",
		Short: "Track grant funders and each tenant's funnel of prospects",
		Long: `grantfunnel is a client for the grant funnel backend.

Commands:
  serve    - Run the web UI
  orgs     - Browse organizations and their grants
  tenants  - List and create tenants
  funnel   - Show and change a tenant's funnel`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "Backend base URL (default: $API_BASE_URL)")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 0, "Per-request timeout (default: $API_TIMEOUT)")

	root.AddCommand(newServeCmd(a))
	root.AddCommand(newOrgsCmd(a))
	root.AddCommand(newTenantsCmd(a))
	root.AddCommand(newFunnelCmd(a))
	return root
}

// setup loads configuration and builds the backend client. Flags win over
// the environment.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if a.apiURL != "" {
		cfg.APIBaseURL = a.apiURL
	}
	if a.timeout > 0 {
		cfg.APITimeout = a.timeout
	}
	a.cfg = cfg

	// The server logs to stdout; other commands keep stdout for their output.
	if cmd.Name() == "serve" {
		a.logger = cfg.NewLogger(cmd.OutOrStdout())
	} else {
		a.logger = cfg.NewLogger(cmd.ErrOrStderr())
	}
	slog.SetDefault(a.logger)

	a.client = api.New(cfg.APIBaseURL,
		api.WithHTTPClient(&http.Client{Timeout: cfg.APITimeout}),
		api.WithLogger(a.logger),
	)
	return nil
}

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
