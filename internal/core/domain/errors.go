package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from transport and API errors, which are typed
// per adapter.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfig indicates an instance configuration failed validation.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConsoleCredentialsMissing indicates a console-scoped operation was
	// requested on an instance configured without email/password.
	ErrConsoleCredentialsMissing = errors.New("console credentials not configured")

	// ErrAutoCreateDisabled indicates the target object is absent and the run
	// policy forbids creating it.
	ErrAutoCreateDisabled = errors.New("target object missing and auto-create disabled")

	// ErrEmptyContent indicates a document had no segment content to import.
	// Import treats this as a skip, never a failure.
	ErrEmptyContent = errors.New("document has no content")
)
