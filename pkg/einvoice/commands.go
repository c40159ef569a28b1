package einvoice

import "context"

// Commands the API documents. Execute accepts any other command name too.
const (
	CommandEmit        = "emitir"
	CommandCancel      = "baja"
	CommandMail        = "correo"
	CommandLookupTaxID = "consultar_ruc"
	CommandPing        = "hola"
)

// KnownCommands lists the documented commands in a stable order.
var KnownCommands = []string{
	CommandEmit,
	CommandCancel,
	CommandMail,
	CommandLookupTaxID,
	CommandPing,
}

// Emit issues an electronic document.
func (c *Client) Emit(ctx context.Context, params Params) (Response, error) {
	return c.WithParameters(params).Execute(ctx, CommandEmit)
}

// Cancel voids a previously issued document.
func (c *Client) Cancel(ctx context.Context, params Params) (Response, error) {
	return c.WithParameters(params).Execute(ctx, CommandCancel)
}

// Mail sends a previously issued document by e-mail.
func (c *Client) Mail(ctx context.Context, params Params) (Response, error) {
	return c.WithParameters(params).Execute(ctx, CommandMail)
}

// LookupTaxID queries taxpayer data for a RUC.
func (c *Client) LookupTaxID(ctx context.Context, params Params) (Response, error) {
	return c.WithParameters(params).Execute(ctx, CommandLookupTaxID)
}

// Ping checks connectivity and credentials.
func (c *Client) Ping(ctx context.Context, params Params) (Response, error) {
	return c.WithParameters(params).Execute(ctx, CommandPing)
}

func commandLabel(command string) string {
	for _, known := range KnownCommands {
		if command == known {
			return command
		}
	}
	return "other"
}
