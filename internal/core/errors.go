package core

import "errors"

// Sentinel errors for the failure kinds the service surfaces. Callers match
// with errors.Is; adapters wrap them with fmt.Errorf("...: %w", ...).
var (
	// ErrNotFound marks an expected row being absent, including a product
	// query returning no rows at all.
	ErrNotFound = errors.New("not found")

	// ErrDataAccess marks a backend query or mutation failure.
	ErrDataAccess = errors.New("data access failure")

	// ErrValidation marks malformed receipt markup or an implausible PDF.
	ErrValidation = errors.New("validation failure")

	// ErrAuth marks credential mismatch or session absence.
	ErrAuth = errors.New("authentication failure")

	// ErrIntegration marks a PDF rendering library failure.
	ErrIntegration = errors.New("integration failure")
)
