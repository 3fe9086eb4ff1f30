package schema

import "errors"

// Sentinel errors for request-shape failures and total store unavailability.
// Per-object and per-device failures are absorbed inside the engine and never
// surface through these.
var (
	// ErrInvalidRange means the end of the requested range precedes its start.
	ErrInvalidRange = errors.New("time range end precedes start")

	// ErrUnsupportedGranularity means the granularity token is not one of 1m, 1h, 1d.
	ErrUnsupportedGranularity = errors.New("unsupported granularity")

	// ErrMissingParams means a required query parameter is absent.
	ErrMissingParams = errors.New("missing required parameters")

	// ErrStoreUnavailable means the object store cannot be reached at all. This
	// is the one per-query abort: no partial result is meaningful without a store.
	ErrStoreUnavailable = errors.New("object store unavailable")
)
