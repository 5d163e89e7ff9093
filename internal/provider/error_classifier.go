package provider

import (
	"errors"
	"strings"

	gosmtp "github.com/emersion/go-smtp"
)

// ProviderError wraps a transport error with classification metadata.
type ProviderError struct {
	// Provider is the name of the transport that returned the error.
	Provider string
	// Code is the SMTP reply code or HTTP status code, 0 when unknown.
	Code int
	// Message is the error description returned by the transport.
	Message string
	// Permanent indicates the error will not succeed on retry.
	Permanent bool

	err error
}

func (e *ProviderError) Error() string {
	return e.Provider + ": " + e.Message
}

func (e *ProviderError) Unwrap() error { return e.err }

// IsPermanent returns true if the error is a permanent failure that should
// not be retried.
func IsPermanent(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Permanent
	}
	return false
}

// IsTransient returns true if the error is a temporary failure that may
// succeed on retry.
func IsTransient(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return !pe.Permanent
	}
	// Unknown errors are treated as transient.
	return true
}

// ClassifySMTPError converts an SMTP client error into a ProviderError.
// 5xx replies are permanent, 4xx replies and non-protocol errors are transient.
func ClassifySMTPError(providerName, stage string, err error) *ProviderError {
	if err == nil {
		return nil
	}

	pe := &ProviderError{
		Provider: providerName,
		Message:  stage + ": " + err.Error(),
		err:      err,
	}

	var se *gosmtp.SMTPError
	if errors.As(err, &se) {
		pe.Code = se.Code
		pe.Permanent = se.Code >= 500 && se.Code < 600
	}
	return pe
}

// ClassifyHTTPError creates a ProviderError from an HTTP status code and
// response body, classifying it as permanent or transient.
func ClassifyHTTPError(providerName string, statusCode int, body string) *ProviderError {
	pe := &ProviderError{
		Provider: providerName,
		Code:     statusCode,
		Message:  body,
	}

	switch {
	case statusCode >= 200 && statusCode < 300:
		return nil

	case statusCode == 400:
		pe.Permanent = containsPermanentIndicator(body)

	case statusCode == 401, statusCode == 403, statusCode == 404:
		pe.Permanent = true

	case statusCode == 429:
		pe.Permanent = false

	case statusCode >= 500:
		pe.Permanent = containsPermanentServerIndicator(body)

	default:
		pe.Permanent = statusCode >= 400 && statusCode < 500
	}

	return pe
}

// containsPermanentIndicator checks if a 400 response body indicates a
// permanent failure (e.g., invalid recipient).
func containsPermanentIndicator(body string) bool {
	return containsAny(body,
		"invalid recipient",
		"invalid email",
		"does not exist",
		"mailbox not found",
		"recipient rejected",
		"email address is not verified",
		"validation error",
		"invalid address",
	)
}

// containsPermanentServerIndicator checks if a 5xx response body indicates
// a permanent server-side failure (e.g., invalid credentials).
func containsPermanentServerIndicator(body string) bool {
	return containsAny(body,
		"invalid api key",
		"authentication failed",
		"account suspended",
		"account disabled",
		"unauthorized",
	)
}

func containsAny(body string, patterns ...string) bool {
	lower := strings.ToLower(body)
	for _, p := range patterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
