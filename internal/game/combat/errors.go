package combat

import "errors"

// ErrConfiguration marks a mismatch between ability data and registered
// handlers. It is fatal at startup and never a per-action outcome.
var ErrConfiguration = errors.New("combat configuration error")
