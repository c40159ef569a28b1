package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"

	"github.com/rezonia/einvoice-client/pkg/einvoice"
)

// paramsFs is where --params files are read from.
var paramsFs = afero.NewOsFs()

// loadParams reads a JSON object from path, or from stdin when path is "-".
// An empty path yields empty parameters.
func loadParams(path string, stdin io.Reader) (einvoice.Params, error) {
	if path == "" {
		return einvoice.Params{}, nil
	}

	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = afero.ReadFile(paramsFs, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read parameters: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var params einvoice.Params
	if err := dec.Decode(&params); err != nil {
		return nil, fmt.Errorf("parameters must be a JSON object: %w", err)
	}
	if params == nil {
		return nil, errors.New("parameters must be a JSON object, got null")
	}
	return params, nil
}

// applySets merges key=value assignments into params.
func applySets(params einvoice.Params, sets []string) error {
	for _, s := range sets {
		key, raw, ok := strings.Cut(s, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return fmt.Errorf("invalid --set %q: expected key=value", s)
		}
		params[key] = parseValue(raw)
	}
	return nil
}

// parseValue keeps JSON literals typed and falls back to the raw string,
// so numero=42 is a number while serie=F001 and codigo=007 stay strings.
func parseValue(raw string) any {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return raw
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return raw
	}
	return v
}
