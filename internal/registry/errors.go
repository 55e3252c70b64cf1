package registry

import "errors"

// Sentinel domain errors used to classify registration failures.
// They should always be wrapped with contextual information at the call site.
var (
	ErrDuplicateTarget = errors.New("docpipe: duplicate target")
	ErrDuplicateStage  = errors.New("docpipe: duplicate extraction stage")
	ErrInvalidArgument = errors.New("docpipe: invalid argument")
)
