package errors

import "errors"

// Domain errors
var (
	// Target input errors
	ErrNoTargetInput          = errors.New("an IP range or a target file must be specified")
	ErrConflictingTargetInput = errors.New("an IP range and a target file cannot both be specified")
	ErrInvalidCIDR            = errors.New("invalid CIDR range")
	ErrEmptyTargetFile        = errors.New("target file contains no usable entries")

	// Results errors
	ErrResultsNotFound  = errors.New("results file not found")
	ErrMalformedResults = errors.New("results file is malformed")
)
