package types

import (
	"fmt"
	"strings"
)

// Validation helpers shared by the gateway and store. All return descriptive
// errors suitable for surfacing to callers unchanged.

// ValidateEmail rejects obviously malformed addresses. The remote store's
// unique constraint is the real arbiter; this only catches typos early.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email must not be empty")
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return fmt.Errorf("invalid email %q", email)
	}
	return nil
}

// ValidateTitle requires a non-blank title for calendar items.
func ValidateTitle(title, field string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%s must not be blank", field)
	}
	return nil
}

// ValidateID requires a positive integer identity.
func ValidateID(id int, field string) error {
	if id <= 0 {
		return fmt.Errorf("%s must be positive, got %d", field, id)
	}
	return nil
}
