package assemble

import "errors"

// Sentinel domain errors surfaced at assembly time, before any command is
// handed to the host executor. They should always be wrapped with contextual
// information at the call site.
var (
	ErrUnregisteredTarget = errors.New("docpipe: no extraction stage registered")
	ErrAssemblyConflict   = errors.New("docpipe: output directory conflict")
)
