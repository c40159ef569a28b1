package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rezonia/einvoice-client/internal/config"
	"github.com/rezonia/einvoice-client/internal/logger"
	"github.com/rezonia/einvoice-client/pkg/einvoice"
)

var (
	version = "1.0.0"

	// Global flags
	cfgFile      string
	token        string
	baseURL      string
	timeout      time.Duration
	insecure     bool
	debug        bool
	logLevel     string
	outputFormat string

	cfg *config.Config
	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "einvoice",
	Short: "Call the electronic invoicing API",
	Long: `einvoice sends commands to the electronic invoicing API and prints the
decoded response.

Credentials come from a YAML config file, EINVOICE_* environment variables
or flags, in increasing order of precedence.

Examples:
  # Check credentials
  einvoice ping --token <token> --base-url https://api.example.pe/api/v1/<tenant>

  # Emit a document described in a JSON file
  einvoice emit --params invoice.json

  # Run any command with inline parameters
  einvoice exec consultar_ruc --set ruc=20100070970 -f table

  # Start a local sandbox
  einvoice serve --address :8080`,
	Version:           version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initConfig,
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "API token (env: EINVOICE_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "API base URL including the tenant (env: EINVOICE_BASE_URL)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout (env: EINVOICE_TIMEOUT)")
	rootCmd.PersistentFlags().BoolVar(&insecure, "insecure", false, "Skip TLS certificate verification")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Dump HTTP requests and responses to the log")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (env: EINVOICE_LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "json", "Output format (json, table)")
}

// initConfig layers flags over the file and environment settings.
func initConfig(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("token") {
		loaded.Token = token
	}
	if flags.Changed("base-url") {
		loaded.BaseURL = baseURL
	}
	if flags.Changed("timeout") {
		loaded.Timeout = timeout
	}
	if flags.Changed("insecure") {
		loaded.InsecureSkipVerify = insecure
	}
	if flags.Changed("debug") {
		loaded.Debug = debug
	}
	if flags.Changed("log-level") {
		loaded.LogLevel = logLevel
	}
	if loaded.Debug && !flags.Changed("log-level") {
		loaded.LogLevel = "debug"
	}

	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if outputFormat != "json" && outputFormat != "table" {
		return fmt.Errorf("unsupported output format: %s", outputFormat)
	}

	l, err := logger.New("einvoice", loaded.LogLevel, loaded.LogPretty)
	if err != nil {
		return err
	}

	cfg, log = loaded, l
	return nil
}

// newClient builds an API client from the resolved configuration. Bad
// credentials surface as a KindInvalidConfiguration error.
func newClient() (*einvoice.Client, error) {
	return einvoice.New(cfg.Token, cfg.BaseURL,
		einvoice.WithLogger(log),
		einvoice.WithTransportOptions(einvoice.TransportOptions{
			Timeout:            cfg.Timeout,
			InsecureSkipVerify: cfg.InsecureSkipVerify,
			Debug:              cfg.Debug,
		}),
	)
}

// ExitCode maps an error to the process exit status. API failures get a
// status per kind so scripts can tell them apart.
func ExitCode(err error) int {
	var apiErr *einvoice.Error
	if !errors.As(err, &apiErr) {
		return 1
	}
	switch apiErr.Kind {
	case einvoice.KindInvalidConfiguration:
		return 2
	case einvoice.KindTransport:
		return 3
	case einvoice.KindParameter:
		return 4
	case einvoice.KindAuthorization:
		return 5
	case einvoice.KindNegotiation:
		return 6
	default:
		return 7
	}
}
