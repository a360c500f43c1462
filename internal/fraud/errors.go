package fraud

import "errors"

// ErrStoreUnavailable wraps history lookups or record writes that could
// not complete. The evaluation boundary degrades it to "fraud check
// incomplete" instead of failing the submission's ingestion.
var ErrStoreUnavailable = errors.New("fraud store unavailable")

// errAlreadyFlagged is an internal transaction sentinel: a fraud record
// for the submission already exists, which callers treat as success.
var errAlreadyFlagged = errors.New("fraud record already exists")
