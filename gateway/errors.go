package gateway

import "errors"

// ErrNotFound reports that the requested row does not exist. It is distinct
// from transport and decode failures, which surface as classified errors,
// so callers can branch on "no data" versus "request failed".
var ErrNotFound = errors.New("gateway: not found")
