package domain

import "errors"

// Error kinds surfaced by the pipeline. Components wrap them with context;
// callers match with errors.Is.
var (
	ErrNetwork       = errors.New("network error")
	ErrParse         = errors.New("parse error")
	ErrConfiguration = errors.New("configuration error")
	ErrDelivery      = errors.New("delivery error")

	// ErrDateParse is per-record and never aborts a run.
	ErrDateParse = errors.New("date parse error")
)
