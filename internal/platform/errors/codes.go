// Package errors provides structured error handling with localized user messages.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Resolution errors
	CodeNotFound         Code = "NOT_FOUND"
	CodeStoreUnavailable Code = "STORE_UNAVAILABLE"

	// Control identifier errors
	CodeControlMalformed   Code = "CONTROL_MALFORMED"
	CodeControlUnknownView Code = "CONTROL_UNKNOWN_VIEW"
	CodeControlInvalidID   Code = "CONTROL_INVALID_ID"

	// View handler errors
	CodeHandlerFailure Code = "HANDLER_FAILURE"

	// Startup errors
	CodeConfigInvalid Code = "CONFIG_INVALID"
)

// Recoverable reports whether the code describes a per-event failure that is
// answered with a message rather than aborting the process.
func (c Code) Recoverable() bool {
	switch c {
	case CodeConfigInvalid:
		return false
	default:
		return true
	}
}

// IsControlError reports whether the code comes from decoding a control id.
func (c Code) IsControlError() bool {
	switch c {
	case CodeControlMalformed, CodeControlUnknownView, CodeControlInvalidID:
		return true
	default:
		return false
	}
}
