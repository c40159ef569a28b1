package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/einvoice-client/internal/server"
	"github.com/rezonia/einvoice-client/pkg/einvoice"
)

const testToken = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func TestParseValue(t *testing.T) {
	tests := []struct {
		raw  string
		want any
	}{
		{"42", json.Number("42")},
		{"84.75", json.Number("84.75")},
		{"true", true},
		{"null", nil},
		{`"42"`, "42"},
		{"F001", "F001"},
		{"007", "007"},
		{"ERROR EN EL RUC", "ERROR EN EL RUC"},
		{"1 2", "1 2"},
		{"", ""},
		{`{"a":1}`, map[string]any{"a": json.Number("1")}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, parseValue(tt.raw))
		})
	}
}

func TestApplySets(t *testing.T) {
	params := einvoice.Params{"serie": "B001"}

	err := applySets(params, []string{"serie=F001", "numero=42", "motivo=a=b"})
	require.NoError(t, err)

	assert.Equal(t, "F001", params["serie"])
	assert.Equal(t, json.Number("42"), params["numero"])
	assert.Equal(t, "a=b", params["motivo"])

	assert.Error(t, applySets(params, []string{"novalue"}))
	assert.Error(t, applySets(params, []string{"=x"}))
}

func TestLoadParams(t *testing.T) {
	params, err := loadParams("", nil)
	require.NoError(t, err)
	assert.Empty(t, params)

	orig := paramsFs
	paramsFs = afero.NewMemMapFs()
	defer func() { paramsFs = orig }()

	path := "/work/params.json"
	require.NoError(t, afero.WriteFile(paramsFs, path, []byte(`{"ruc": "20100070970", "total": 218.01}`), 0o600))

	params, err = loadParams(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "20100070970", params["ruc"])
	assert.Equal(t, json.Number("218.01"), params["total"])

	params, err = loadParams("-", strings.NewReader(`{"numero": 7}`))
	require.NoError(t, err)
	assert.Equal(t, json.Number("7"), params["numero"])

	for _, body := range []string{"null", "[]", "nope"} {
		_, err = loadParams("-", strings.NewReader(body))
		assert.Error(t, err, body)
	}

	_, err = loadParams("/work/missing.json", nil)
	assert.Error(t, err)
}

func TestOutputTable(t *testing.T) {
	var buf bytes.Buffer
	err := outputTable(&buf, einvoice.Response{
		"serie":   "F001",
		"numero":  float64(1000000),
		"enviado": true,
		"items":   []any{"a"},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "KEY"))
	assert.Contains(t, lines[2], "enviado")
	assert.Contains(t, lines[3], `["a"]`)
	assert.Contains(t, lines[4], "1000000")
	assert.Contains(t, lines[5], "F001")
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"plain error", errors.New("boom"), 1},
		{"invalid configuration", &einvoice.Error{Kind: einvoice.KindInvalidConfiguration}, 2},
		{"transport", &einvoice.Error{Kind: einvoice.KindTransport}, 3},
		{"parameter", &einvoice.Error{Kind: einvoice.KindParameter}, 4},
		{"authorization", &einvoice.Error{Kind: einvoice.KindAuthorization}, 5},
		{"negotiation", &einvoice.Error{Kind: einvoice.KindNegotiation}, 6},
		{"fatal", &einvoice.Error{Kind: einvoice.KindFatal}, 7},
		{"wrapped", fmt.Errorf("emit: %w", &einvoice.Error{Kind: einvoice.KindAuthorization}), 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestListenPort(t *testing.T) {
	assert.Equal(t, ":8080", listenPort(":8080"))
	assert.Equal(t, ":9090", listenPort("127.0.0.1:9090"))
	assert.Equal(t, "", listenPort("nope"))
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// One test drives the CLI against the sandbox; flag variables are
// package-level and keep their values between executions.
func TestCLIAgainstSandbox(t *testing.T) {
	tenantID := uuid.New()
	srv := server.NewServer(&server.Config{Token: testToken, Tenant: tenantID})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	creds := []string{"--token", testToken, "--base-url", srv.BaseURL(ts.URL), "--format", "json"}

	out, err := run(t, append([]string{"ping"}, creds...)...)
	require.NoError(t, err, out)
	var resp map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "hola", resp["respuesta"])
	assert.Equal(t, tenantID.String(), resp["tenant"])

	out, err = run(t, append([]string{"ruc", "20100070970"}, creds...)...)
	require.NoError(t, err, out)
	assert.Contains(t, out, `"estado": "ACTIVO"`)

	out, err = run(t, append([]string{"ruc", "123", "--show-response"}, creds...)...)
	require.Error(t, err)
	assert.Equal(t, 4, ExitCode(err))
	assert.Contains(t, out, "El RUC no es válido")

	_, err = run(t, "ping", "--token", testToken, "--base-url", "http://localhost/no-tenant")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.Equal(t, 2, ExitCode(err))

	_, err = run(t, "ping", "--token", "ABC", "--base-url", srv.BaseURL(ts.URL))
	require.Error(t, err)
	assert.ErrorIs(t, err, einvoice.ErrInvalidConfiguration)
	assert.Equal(t, 2, ExitCode(err))
}
