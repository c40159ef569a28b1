package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	money "github.com/rezonia/einvoice-client/internal/decimal"
	"github.com/rezonia/einvoice-client/internal/model"
)

const customerRUC = "6"

func (s *Server) handlePing(_ *gin.Context, _ params) (any, *model.APIError) {
	return PingResponse{
		Respuesta: "hola",
		Tenant:    s.config.Tenant.String(),
		Hora:      time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (s *Server) handleEmit(_ *gin.Context, p params) (any, *model.APIError) {
	docType, apiErr := p.integer("tipo_de_comprobante")
	if apiErr != nil {
		return nil, apiErr
	}
	if docType < 1 || docType > 4 {
		return nil, malformed("tipo_de_comprobante")
	}
	series, apiErr := p.str("serie")
	if apiErr != nil {
		return nil, apiErr
	}
	number, apiErr := p.integer("numero")
	if apiErr != nil {
		return nil, apiErr
	}
	if number < 1 {
		return nil, malformed("numero")
	}
	customerDoc, apiErr := p.str("cliente_numero_de_documento")
	if apiErr != nil {
		return nil, apiErr
	}
	customerName, apiErr := p.str("cliente_denominacion")
	if apiErr != nil {
		return nil, apiErr
	}
	if p.optionalStr("cliente_tipo_de_documento") == customerRUC && !model.ValidRUC(customerDoc) {
		return nil, model.NewSunatError("2017", "El número de documento de identidad del receptor debe ser RUC")
	}

	taxable, igv, lineTotal, apiErr := sumItems(p)
	if apiErr != nil {
		return nil, apiErr
	}
	total, apiErr := p.amount("total")
	if apiErr != nil {
		return nil, apiErr
	}
	if !money.WithinTolerance(total, lineTotal) {
		return nil, model.NewParameterError("El total no coincide con la suma de los ítems",
			fmt.Sprintf("total=%s items=%s", money.Format(total), money.Format(lineTotal)))
	}

	v := &model.Voucher{
		Type:          docType,
		Series:        series,
		Number:        number,
		IssueDate:     p.optionalStr("fecha_de_emision"),
		CustomerDoc:   customerDoc,
		CustomerName:  customerName,
		CustomerEmail: p.optionalStr("cliente_email"),
		Taxable:       taxable,
		IGV:           igv,
		Total:         total,
		Status:        model.StatusAccepted,
		ReceivedAt:    time.Now().UTC(),
	}
	if !s.store.Add(v) {
		return nil, model.NewSunatError("1033", "El comprobante fue registrado previamente con otros datos")
	}

	return EmitResponse{
		TipoDeComprobante: docType,
		Serie:             series,
		Numero:            number,
		AceptadaPorSunat:  true,
		SunatDescription:  fmt.Sprintf("El comprobante %s-%d ha sido aceptado", series, number),
		SunatResponseCode: "0",
		CodigoHash:        v.Hash(),
		Total:             money.Format(total),
	}, nil
}

// sumItems adds up the line amounts. Lines without subtotal or igv get
// them derived from cantidad and valor_unitario.
func sumItems(p params) (taxable, igv, total decimal.Decimal, apiErr *model.APIError) {
	items, apiErr := p.items("items")
	if apiErr != nil {
		return
	}
	rate := money.FromInt(money.DefaultIGVRate)
	if _, ok := p["porcentaje_de_igv"]; ok {
		if rate, apiErr = p.amount("porcentaje_de_igv"); apiErr != nil {
			return
		}
	}

	var subs, taxes []decimal.Decimal
	for i, it := range items {
		field := func(name string) string { return fmt.Sprintf("items[%d].%s", i, name) }
		if _, err := it.str("descripcion"); err != nil {
			return taxable, igv, total, missing(field("descripcion"))
		}

		sub, err := it.amount("subtotal")
		if err != nil {
			qty, qerr := it.amount("cantidad")
			if qerr != nil || !money.IsPositive(qty) {
				return taxable, igv, total, malformed(field("cantidad"))
			}
			unit, uerr := it.amount("valor_unitario")
			if uerr != nil || !money.IsNonNegative(unit) {
				return taxable, igv, total, malformed(field("valor_unitario"))
			}
			sub = money.Mul(qty, unit)
		}

		tax, err := it.amount("igv")
		if err != nil {
			tax = money.CalculateIGV(sub, rate)
		}
		subs = append(subs, sub)
		taxes = append(taxes, tax)
	}

	taxable = money.Sum(subs)
	igv = money.Sum(taxes)
	total = taxable.Add(igv)
	return taxable, igv, total, nil
}

// voucherKey reads the fields identifying an existing voucher.
func voucherKey(p params) (string, *model.APIError) {
	docType, apiErr := p.integer("tipo_de_comprobante")
	if apiErr != nil {
		return "", apiErr
	}
	series, apiErr := p.str("serie")
	if apiErr != nil {
		return "", apiErr
	}
	number, apiErr := p.integer("numero")
	if apiErr != nil {
		return "", apiErr
	}
	return model.VoucherKey(docType, series, number), nil
}

var errAlreadyVoided = errors.New("already voided")

func (s *Server) handleCancel(_ *gin.Context, p params) (any, *model.APIError) {
	key, apiErr := voucherKey(p)
	if apiErr != nil {
		return nil, apiErr
	}
	reason, apiErr := p.str("motivo")
	if apiErr != nil {
		return nil, apiErr
	}

	found, err := s.store.Update(key, func(v *model.Voucher) error {
		if v.Status == model.StatusVoided {
			return errAlreadyVoided
		}
		v.Status = model.StatusVoided
		v.VoidReason = reason
		return nil
	})
	if !found {
		return nil, model.NewParameterError("El comprobante no existe", key)
	}
	if err != nil {
		return nil, model.NewParameterError("El comprobante ya fue anulado", key)
	}

	v, _ := s.store.Get(key)
	return CancelResponse{
		TipoDeComprobante: v.Type,
		Serie:             v.Series,
		Numero:            v.Number,
		SunatTicketNumero: uuid.NewString(),
		AceptadaPorSunat:  true,
	}, nil
}

func (s *Server) handleMail(_ *gin.Context, p params) (any, *model.APIError) {
	key, apiErr := voucherKey(p)
	if apiErr != nil {
		return nil, apiErr
	}
	email, apiErr := p.str("cliente_email")
	if apiErr != nil {
		return nil, apiErr
	}
	if err := validation.Validate(email, is.EmailFormat); err != nil {
		return nil, model.NewParameterError("El correo electrónico no es válido", email)
	}

	var sent int
	found, _ := s.store.Update(key, func(v *model.Voucher) error {
		v.MailRecipients = append(v.MailRecipients, email)
		sent = len(v.MailRecipients)
		return nil
	})
	if !found {
		return nil, model.NewParameterError("El comprobante no existe", key)
	}

	return MailResponse{
		Enviado:      true,
		ClienteEmail: email,
		Envios:       sent,
	}, nil
}

func (s *Server) handleLookupTaxID(_ *gin.Context, p params) (any, *model.APIError) {
	ruc, apiErr := p.str("ruc")
	if apiErr != nil {
		return nil, apiErr
	}
	if !model.ValidRUC(ruc) {
		return nil, model.NewParameterError("El RUC no es válido", ruc)
	}

	return TaxpayerResponse{
		RUC:         ruc,
		RazonSocial: "CONTRIBUYENTE DE PRUEBA " + ruc,
		Tipo:        model.TaxpayerKind(ruc),
		Estado:      "ACTIVO",
		Condicion:   "HABIDO",
	}, nil
}
