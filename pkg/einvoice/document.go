package einvoice

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/shopspring/decimal"

	money "github.com/rezonia/einvoice-client/internal/decimal"
)

// DocumentType is the SUNAT voucher type code.
type DocumentType int

const (
	DocumentInvoice    DocumentType = 1 // factura
	DocumentReceipt    DocumentType = 2 // boleta de venta
	DocumentCreditNote DocumentType = 3
	DocumentDebitNote  DocumentType = 4
)

// Customer identity document types.
const (
	CustomerRUC      = "6"
	CustomerDNI      = "1"
	CustomerNoDoc    = "-"
	CustomerForeign  = "4"
	CustomerPassport = "7"
)

// IssueDateLayout is the date format the API expects.
const IssueDateLayout = "02-01-2006"

var seriesPattern = regexp.MustCompile(`^[A-Z0-9]{4}$`)

// Customer is the buyer of a document.
type Customer struct {
	DocumentType   string
	DocumentNumber string
	Name           string
	Address        string
	Email          string
}

func (c Customer) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.DocumentType, validation.Required,
			validation.In(CustomerRUC, CustomerDNI, CustomerNoDoc, CustomerForeign, CustomerPassport)),
		validation.Field(&c.DocumentNumber, validation.Required),
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.Email, is.EmailFormat),
	)
}

// Item is one document line. UnitValue excludes IGV unless
// PriceIncludesIGV is set.
type Item struct {
	Unit             string
	Code             string
	Description      string
	Quantity         decimal.Decimal
	UnitValue        decimal.Decimal
	PriceIncludesIGV bool
}

func (it Item) Validate() error {
	return validation.ValidateStruct(&it,
		validation.Field(&it.Description, validation.Required),
		validation.Field(&it.Quantity, validation.By(positive)),
		validation.Field(&it.UnitValue, validation.By(nonNegative)),
	)
}

// NetUnitValue is the unit value before IGV at ratePercent.
func (it Item) NetUnitValue(ratePercent decimal.Decimal) decimal.Decimal {
	if it.PriceIncludesIGV {
		return money.NetFromGross(it.UnitValue, ratePercent)
	}
	return it.UnitValue
}

// Subtotal is quantity times the net unit value, before tax.
func (it Item) Subtotal(ratePercent decimal.Decimal) decimal.Decimal {
	return money.Mul(it.Quantity, it.NetUnitValue(ratePercent))
}

// Document is an electronic voucher ready to be emitted.
type Document struct {
	Type      DocumentType
	Series    string
	Number    int
	IssueDate time.Time
	Currency  int // 1 = PEN, 2 = USD
	IGVRate   decimal.Decimal
	Customer  Customer
	Items     []Item
	Notes     string
}

// Totals are the document amounts derived from its items.
type Totals struct {
	Taxable decimal.Decimal
	IGV     decimal.Decimal
	Total   decimal.Decimal
}

func (d Document) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Type, validation.Required,
			validation.In(DocumentInvoice, DocumentReceipt, DocumentCreditNote, DocumentDebitNote)),
		validation.Field(&d.Series, validation.Required, validation.Match(seriesPattern)),
		validation.Field(&d.Number, validation.Required, validation.Min(1)),
		validation.Field(&d.IssueDate, validation.Required),
		validation.Field(&d.Customer),
		validation.Field(&d.Items, validation.Required),
	)
}

// rate returns the IGV rate, defaulting to the general rate.
func (d Document) rate() decimal.Decimal {
	if d.IGVRate.IsZero() {
		return money.FromInt(money.DefaultIGVRate)
	}
	return d.IGVRate
}

// Totals computes taxable base, IGV and total. IGV is computed per line and
// summed, matching how the lines are reported.
func (d Document) Totals() Totals {
	var taxable, igv []decimal.Decimal
	for _, it := range d.Items {
		sub := it.Subtotal(d.rate())
		taxable = append(taxable, sub)
		igv = append(igv, money.CalculateIGV(sub, d.rate()))
	}
	t := Totals{
		Taxable: money.Sum(taxable),
		IGV:     money.Sum(igv),
	}
	t.Total = t.Taxable.Add(t.IGV)
	return t
}

// Params renders the document as emitir parameters.
func (d Document) Params() Params {
	currency := d.Currency
	if currency == 0 {
		currency = 1
	}
	rate := d.rate()
	totals := d.Totals()

	items := make([]any, 0, len(d.Items))
	for _, it := range d.Items {
		unit := it.Unit
		if unit == "" {
			unit = "NIU"
		}
		net := it.NetUnitValue(rate)
		sub := it.Subtotal(rate)
		tax := money.CalculateIGV(sub, rate)
		unitPrice := money.Round(net.Add(money.CalculateIGV(net, rate)))
		if it.PriceIncludesIGV {
			unitPrice = money.Round(it.UnitValue)
		}
		items = append(items, map[string]any{
			"unidad_de_medida": unit,
			"codigo":           it.Code,
			"descripcion":      it.Description,
			"cantidad":         json.Number(it.Quantity.String()),
			"valor_unitario":   amount(net),
			"precio_unitario":  amount(unitPrice),
			"subtotal":         amount(sub),
			"tipo_de_igv":      1,
			"igv":              amount(tax),
			"total":            amount(sub.Add(tax)),
		})
	}

	p := Params{
		"tipo_de_comprobante":         int(d.Type),
		"serie":                       d.Series,
		"numero":                      d.Number,
		"fecha_de_emision":            d.IssueDate.Format(IssueDateLayout),
		"moneda":                      currency,
		"porcentaje_de_igv":           amount(rate),
		"cliente_tipo_de_documento":   d.Customer.DocumentType,
		"cliente_numero_de_documento": d.Customer.DocumentNumber,
		"cliente_denominacion":        d.Customer.Name,
		"cliente_direccion":           d.Customer.Address,
		"total_gravada":               amount(totals.Taxable),
		"total_igv":                   amount(totals.IGV),
		"total":                       amount(totals.Total),
		"items":                       items,
	}
	if d.Customer.Email != "" {
		p["cliente_email"] = d.Customer.Email
	}
	if d.Notes != "" {
		p["observaciones"] = d.Notes
	}
	return p
}

// CancelRequest identifies a document to void.
type CancelRequest struct {
	Type   DocumentType
	Series string
	Number int
	Reason string
}

func (r CancelRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Type, validation.Required),
		validation.Field(&r.Series, validation.Required, validation.Match(seriesPattern)),
		validation.Field(&r.Number, validation.Required, validation.Min(1)),
		validation.Field(&r.Reason, validation.Required),
	)
}

// Params renders the request as baja parameters.
func (r CancelRequest) Params() Params {
	return Params{
		"tipo_de_comprobante": int(r.Type),
		"serie":               r.Series,
		"numero":              r.Number,
		"motivo":              r.Reason,
	}
}

// MailRequest identifies a document to send and its recipient.
type MailRequest struct {
	Type   DocumentType
	Series string
	Number int
	Email  string
}

func (r MailRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Type, validation.Required),
		validation.Field(&r.Series, validation.Required, validation.Match(seriesPattern)),
		validation.Field(&r.Number, validation.Required, validation.Min(1)),
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
	)
}

// Params renders the request as correo parameters.
func (r MailRequest) Params() Params {
	return Params{
		"tipo_de_comprobante": int(r.Type),
		"serie":               r.Series,
		"numero":              r.Number,
		"cliente_email":       r.Email,
	}
}

// EmitDocument validates doc locally and emits it. A local validation
// failure is a KindParameter error and sends nothing.
func (c *Client) EmitDocument(ctx context.Context, doc Document) (Response, error) {
	if err := doc.Validate(); err != nil {
		return nil, newError(KindParameter, err.Error(), err)
	}
	return c.Emit(ctx, doc.Params())
}

// CancelDocument validates r locally and voids the document.
func (c *Client) CancelDocument(ctx context.Context, r CancelRequest) (Response, error) {
	if err := r.Validate(); err != nil {
		return nil, newError(KindParameter, err.Error(), err)
	}
	return c.Cancel(ctx, r.Params())
}

// MailDocument validates r locally and requests the e-mail.
func (c *Client) MailDocument(ctx context.Context, r MailRequest) (Response, error) {
	if err := r.Validate(); err != nil {
		return nil, newError(KindParameter, err.Error(), err)
	}
	return c.Mail(ctx, r.Params())
}

// amount encodes a decimal as a JSON number with two places.
func amount(d decimal.Decimal) json.Number {
	return json.Number(money.Format(d))
}

func positive(value any) error {
	d, _ := value.(decimal.Decimal)
	if !money.IsPositive(d) {
		return errors.New("must be greater than zero")
	}
	return nil
}

func nonNegative(value any) error {
	d, _ := value.(decimal.Decimal)
	if !money.IsNonNegative(d) {
		return errors.New("must not be negative")
	}
	return nil
}
