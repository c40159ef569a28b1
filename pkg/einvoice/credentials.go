package einvoice

import (
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

var (
	tokenPattern   = regexp.MustCompile(`^[0-9a-f]{64}$`)
	baseURLPattern = regexp.MustCompile(`^https?://.+[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)
	tenantPattern  = regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)
)

// credentials are fixed for the lifetime of a Client.
type credentials struct {
	token   string
	baseURL string
	tenant  uuid.UUID
}

// ValidateToken reports whether token is a 64-character lowercase hex string.
func ValidateToken(token string) error {
	return validation.Validate(token,
		validation.Required.Error("token is required"),
		validation.Match(tokenPattern).Error("token must be 64 lowercase hexadecimal characters"),
	)
}

// ValidateBaseURL reports whether baseURL is an http(s) URL carrying a
// tenant UUID segment.
func ValidateBaseURL(baseURL string) error {
	return validation.Validate(baseURL,
		validation.Required.Error("base URL is required"),
		validation.Match(baseURLPattern).Error("base URL must be http(s) and contain a tenant UUID segment"),
	)
}

func newCredentials(token, baseURL string) (credentials, error) {
	errs := validation.Errors{
		"token":    ValidateToken(token),
		"base_url": ValidateBaseURL(baseURL),
	}.Filter()
	if errs != nil {
		return credentials{}, newError(KindInvalidConfiguration, errs.Error(), errs)
	}

	// The pattern matched, so at least one segment exists past the scheme.
	// When several are present the last one names the tenant.
	rest := baseURL[strings.Index(baseURL, "://")+3:]
	segments := tenantPattern.FindAllString(rest, -1)
	tenant, err := uuid.Parse(segments[len(segments)-1])
	if err != nil {
		return credentials{}, newError(KindInvalidConfiguration, fmt.Sprintf("invalid tenant segment: %v", err), err)
	}

	return credentials{
		token:   token,
		baseURL: baseURL,
		tenant:  tenant,
	}, nil
}
