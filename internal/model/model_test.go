package model_test

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/rezonia/einvoice-client/internal/model"
)

func TestValidRUC(t *testing.T) {
	tests := []struct {
		ruc   string
		valid bool
	}{
		{"20100070970", true},
		{"20131312955", true},
		{"20100070971", false}, // wrong check digit
		{"2010007097", false},  // too short
		{"201000709700", false},
		{"2010007097A", false},
		{"30100070970", false}, // unknown prefix
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.ruc, func(t *testing.T) {
			assert.Equal(t, tt.valid, model.ValidRUC(tt.ruc))
		})
	}
}

func TestTaxpayerKind(t *testing.T) {
	assert.Equal(t, "PERSONA JURIDICA", model.TaxpayerKind("20100070970"))
	assert.Equal(t, "PERSONA NATURAL", model.TaxpayerKind("10412345678"))
	assert.Equal(t, "OTROS", model.TaxpayerKind("15123456789"))
	assert.Empty(t, model.TaxpayerKind("1"))
}

func TestVoucher_Key(t *testing.T) {
	v := &model.Voucher{Type: 1, Series: "F001", Number: 7, Total: decimal.RequireFromString("118")}
	assert.Equal(t, "1-F001-7", v.Key())
	assert.Equal(t, model.VoucherKey(1, "F001", 7), v.Key())
	assert.Len(t, v.Hash(), 8)

	other := &model.Voucher{Type: 1, Series: "F001", Number: 8, Total: decimal.RequireFromString("118")}
	assert.NotEqual(t, v.Hash(), other.Hash())
}

func TestAPIError_Body(t *testing.T) {
	err := model.NewParameterError("bad field", "campo X")
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, "HTTP 400: bad field - campo X", err.Error())
	assert.Equal(t, map[string]any{
		"errors":            true,
		"descripcion_error": "bad field",
		"descripcion_extra": "campo X",
	}, err.Body())

	sunat := model.NewSunatError("2800", "serie duplicada")
	body := sunat.Body()
	assert.Equal(t, "2800", body["sunat_respuesta"])
	assert.Equal(t, "serie duplicada", body["sunat_descripcion"])
	assert.Equal(t, "HTTP 400: [SUNAT 2800] serie duplicada", sunat.Error())

	assert.Equal(t, http.StatusForbidden, model.NewAuthorizationError("x").Status)
	assert.Equal(t, http.StatusNotAcceptable, model.NewNegotiationError("x").Status)
	assert.NotContains(t, model.NewAuthorizationError("x").Body(), "descripcion_extra")
}
