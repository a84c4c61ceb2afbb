// Package errdefs defines the error taxonomy shared by the store, quota,
// gateway and check pipeline. Handlers map these onto HTTP status codes.
package errdefs

import "fmt"

// ValidationError reports a missing or blank required field.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validation builds a ValidationError for the given field name.
func Validation(field string) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf("missing required field: %s", field)}
}

// NotFoundError reports a referenced record that does not exist.
type NotFoundError struct {
	Kind string
	Key  string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s not found: %s", e.Kind, e.Key) }

// QuotaExceededError reports a local or remote check cap hit, or a ban.
// ChecksRemaining is always zero when this error is returned.
type QuotaExceededError struct {
	Msg string
}

func (e *QuotaExceededError) Error() string { return e.Msg }

// InvalidAddressError reports a malformed account identifier presented to
// the authorization gateway. The pipeline treats it like a gateway outage
// and fails open.
type InvalidAddressError struct {
	Address string
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("invalid account address: %s", e.Address)
}
