package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rezonia/einvoice-client/pkg/einvoice"
)

var (
	paramsFile   string
	setParams    []string
	showResponse bool
)

var execCmd = &cobra.Command{
	Use:   "exec <command>",
	Short: "Run any API command",
	Long: `Run an API command by name with parameters from a JSON file, stdin or
--set flags. --set values that parse as JSON keep their type; anything else
is sent as a string.

Examples:
  einvoice exec hola
  einvoice exec emitir --params invoice.json
  cat invoice.json | einvoice exec emitir --params -
  einvoice exec baja --set tipo_de_comprobante=1 --set serie=F001 --set numero=42 --set motivo="ERROR EN EL RUC"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, args[0], nil)
	},
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check connectivity and credentials (hola)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runCommand(cmd, einvoice.CommandPing, nil)
	},
}

var emitCmd = &cobra.Command{
	Use:   "emit",
	Short: "Emit a document (emitir)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runCommand(cmd, einvoice.CommandEmit, nil)
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Void a document (baja)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runCommand(cmd, einvoice.CommandCancel, nil)
	},
}

var mailCmd = &cobra.Command{
	Use:   "mail",
	Short: "Send a document by email (correo)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runCommand(cmd, einvoice.CommandMail, nil)
	},
}

var rucCmd = &cobra.Command{
	Use:   "ruc <number>",
	Short: "Look up a taxpayer by RUC (consultar_ruc)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, einvoice.CommandLookupTaxID, einvoice.Params{"ruc": args[0]})
	},
}

func init() {
	for _, c := range []*cobra.Command{execCmd, pingCmd, emitCmd, cancelCmd, mailCmd, rucCmd} {
		rootCmd.AddCommand(c)
		c.Flags().StringVarP(&paramsFile, "params", "p", "", "JSON file with the parameters, or - for stdin")
		c.Flags().StringArrayVar(&setParams, "set", nil, "Set a parameter as key=value (repeatable)")
		c.Flags().BoolVar(&showResponse, "show-response", false, "Print the API response body when the call fails")
	}
}

// runCommand resolves the parameters, executes command and prints the
// response. fixed entries win over --params and --set.
func runCommand(cmd *cobra.Command, command string, fixed einvoice.Params) error {
	params, err := loadParams(paramsFile, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if err := applySets(params, setParams); err != nil {
		return err
	}
	for k, v := range fixed {
		params[k] = v
	}

	client, err := newClient()
	if err != nil {
		return err
	}

	log.Debug().Str("command", command).Int("params", len(params)).Msg("executing")
	resp, err := client.WithParameters(params).Execute(cmd.Context(), command)
	if err != nil {
		var apiErr *einvoice.Error
		if showResponse && errors.As(err, &apiErr) && apiErr.Response != nil {
			if perr := printResponse(cmd.ErrOrStderr(), outputFormat, apiErr.Response); perr != nil {
				return errors.Join(err, perr)
			}
		}
		return err
	}

	if err := printResponse(cmd.OutOrStdout(), outputFormat, resp); err != nil {
		return fmt.Errorf("failed to print response: %w", err)
	}
	return nil
}
