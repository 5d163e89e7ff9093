package provider

import (
	"errors"
	"fmt"
	"time"
)

// ProviderConfig holds configuration for a mail transport.
type ProviderConfig struct {
	// Type identifies the provider: "smtp", "ses", "stdout", "file".
	Type string

	// SMTP relay settings.
	Host     string
	Port     int
	Username string
	Password string
	TLSMode  string // starttls (default), implicit, none

	// Endpoint is the output directory for the file provider.
	Endpoint string

	// AWS SES settings. Empty keys fall back to the default credential chain.
	Region          string
	AccessKeyID     string
	SecretAccessKey string

	// Timeout is the maximum duration of a single send.
	Timeout time.Duration
}

const (
	defaultTimeout  = 30 * time.Second
	defaultSMTPPort = 587

	TLSModeStartTLS = "starttls"
	TLSModeImplicit = "implicit"
	TLSModeNone     = "none"
)

// ErrUnknownType is returned for an unsupported provider type.
var ErrUnknownType = errors.New("unknown provider type")

// Validate checks that required fields are set based on provider type
// and fills in defaults.
func (c *ProviderConfig) Validate() error {
	if c.Type == "" {
		return errors.New("provider type is required")
	}

	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}

	switch c.Type {
	case "smtp":
		if c.Host == "" {
			return errors.New("smtp: host is required")
		}
		if c.Port == 0 {
			c.Port = defaultSMTPPort
		}
		if c.TLSMode == "" {
			c.TLSMode = TLSModeStartTLS
		}
		switch c.TLSMode {
		case TLSModeStartTLS, TLSModeImplicit, TLSModeNone:
		default:
			return errors.New("smtp: tls_mode must be starttls, implicit or none")
		}
		if (c.Username == "") != (c.Password == "") {
			return errors.New("smtp: username and password must be set together")
		}
	case "ses":
		if c.Region == "" {
			return errors.New("ses: region is required")
		}
		if (c.AccessKeyID == "") != (c.SecretAccessKey == "") {
			return errors.New("ses: access_key_id and secret_access_key must be set together")
		}
	case "stdout":
		// No configuration required.
	case "file":
		// Endpoint is used as output directory; optional (defaults to ./mail_output).
	default:
		return fmt.Errorf("%w: %s", ErrUnknownType, c.Type)
	}

	return nil
}
