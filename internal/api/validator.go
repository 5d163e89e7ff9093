package api

import (
	"fmt"
	"net/mail"
)

// ValidateEmailAddress validates an email address per RFC 5322. Display
// names are rejected: the value must be a bare address.
func ValidateEmailAddress(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return err
	}
	if addr.Address != email {
		return fmt.Errorf("expected a bare address, got %q", email)
	}
	return nil
}
