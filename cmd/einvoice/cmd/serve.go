package cmd

import (
	"fmt"
	"net"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/einvoice-client/internal/server"
)

var (
	serverAddr   string
	sandboxToken string
	tenant       string
	readTimeout  time.Duration
	writeTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start a local sandbox of the API",
	Long: `Start an HTTP server that emulates the invoicing API for one tenant.

Vouchers are kept in memory. The sandbox provides:
  - POST /api/v1/<tenant>/<command> - hola, emitir, baja, correo, consultar_ruc
  - GET  /health                    - Health check
  - GET  /metrics                   - Prometheus metrics

A token and tenant are generated when none are configured; both are logged
at startup.

Examples:
  # Start the sandbox on the default port
  einvoice serve

  # Fixed credentials, so clients can be configured ahead of time
  einvoice serve --address :9090 --tenant 3ea7a8b3-93b4-44d1-b18e-f0a5b76ae31c --sandbox-token <token>`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverAddr, "address", ":8080", "Server listen address")
	serveCmd.Flags().StringVar(&sandboxToken, "sandbox-token", "", "Token the sandbox accepts (default: generated)")
	serveCmd.Flags().StringVar(&tenant, "tenant", "", "Tenant UUID the sandbox serves (default: generated)")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 30*time.Second, "HTTP read timeout")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", 30*time.Second, "HTTP write timeout")
}

func runServe(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	if flags.Changed("address") {
		cfg.Sandbox.Address = serverAddr
	}
	if flags.Changed("sandbox-token") {
		cfg.Sandbox.Token = sandboxToken
	}
	if flags.Changed("tenant") {
		cfg.Sandbox.Tenant = tenant
	}
	if flags.Changed("read-timeout") {
		cfg.Sandbox.ReadTimeout = readTimeout
	}
	if flags.Changed("write-timeout") {
		cfg.Sandbox.WriteTimeout = writeTimeout
	}

	cfg.EnsureSandboxIdentity()
	if err := cfg.ValidateSandbox(); err != nil {
		return fmt.Errorf("invalid sandbox configuration: %w", err)
	}
	tenantID, err := cfg.SandboxTenant()
	if err != nil {
		return err
	}

	srv := server.NewServer(&server.Config{
		Address:      cfg.Sandbox.Address,
		Token:        cfg.Sandbox.Token,
		Tenant:       tenantID,
		ReadTimeout:  cfg.Sandbox.ReadTimeout,
		WriteTimeout: cfg.Sandbox.WriteTimeout,
		Debug:        cfg.Debug,
		Logger:       log,
	})

	log.Info().
		Str("address", cfg.Sandbox.Address).
		Str("tenant", tenantID.String()).
		Str("token", cfg.Sandbox.Token).
		Str("base_url", srv.BaseURL("http://localhost"+listenPort(cfg.Sandbox.Address))).
		Msg("Starting sandbox")

	if err := srv.Run(cmd.Context()); err != nil {
		return err
	}
	log.Info().Msg("Sandbox stopped")
	return nil
}

// listenPort returns the ":port" part of a listen address.
func listenPort(addr string) string {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return ""
	}
	return ":" + port
}
