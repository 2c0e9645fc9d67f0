package incidents

import "errors"

// Query errors.
var (
	ErrInvalidDateRange   = errors.New("invalid date range: from is after to")
	ErrInvalidState       = errors.New("invalid incident state")
	ErrInvalidStage       = errors.New("invalid incident stage")
	ErrInvalidGranularity = errors.New("invalid trend granularity")
)
