package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	money "github.com/rezonia/einvoice-client/internal/decimal"
	"github.com/rezonia/einvoice-client/internal/model"
)

// params is a decoded request body. Numbers stay json.Number so amounts
// keep their exact decimal representation.
type params map[string]any

func decodeParams(data []byte) (params, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var p params
	if err := dec.Decode(&p); err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errors.New("body is null")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after JSON object")
	}
	return p, nil
}

func missing(key string) *model.APIError {
	return model.NewParameterError("Falta un parámetro requerido", key)
}

func malformed(key string) *model.APIError {
	return model.NewParameterError("Parámetro con formato inválido", key)
}

func (p params) str(key string) (string, *model.APIError) {
	v, ok := p[key]
	if !ok || v == nil {
		return "", missing(key)
	}
	var s string
	switch t := v.(type) {
	case string:
		s = strings.TrimSpace(t)
	case json.Number:
		s = t.String()
	default:
		return "", malformed(key)
	}
	if s == "" {
		return "", missing(key)
	}
	return s, nil
}

func (p params) optionalStr(key string) string {
	s, err := p.str(key)
	if err != nil {
		return ""
	}
	return s
}

func (p params) integer(key string) (int, *model.APIError) {
	v, ok := p[key]
	if !ok || v == nil {
		return 0, missing(key)
	}
	switch t := v.(type) {
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return 0, malformed(key)
		}
		return int(n), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, malformed(key)
		}
		return n, nil
	default:
		return 0, malformed(key)
	}
}

func (p params) amount(key string) (decimal.Decimal, *model.APIError) {
	v, ok := p[key]
	if !ok || v == nil {
		return decimal.Zero, missing(key)
	}
	var raw string
	switch t := v.(type) {
	case json.Number:
		raw = t.String()
	case string:
		raw = strings.TrimSpace(t)
	default:
		return decimal.Zero, malformed(key)
	}
	d, err := money.FromString(raw)
	if err != nil {
		return decimal.Zero, malformed(key)
	}
	return d, nil
}

func (p params) items(key string) ([]params, *model.APIError) {
	v, ok := p[key]
	if !ok || v == nil {
		return nil, missing(key)
	}
	list, ok := v.([]any)
	if !ok {
		return nil, malformed(key)
	}
	if len(list) == 0 {
		return nil, missing(key)
	}
	out := make([]params, 0, len(list))
	for i, raw := range list {
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, malformed(fmt.Sprintf("%s[%d]", key, i))
		}
		out = append(out, params(m))
	}
	return out, nil
}
