package orchestrator

import "errors"

// ErrRunNotFound means the registry has no run with the given id.
var ErrRunNotFound = errors.New("run not found")

// ErrStubsDisabled means the backend is unavailable and stub fallback was
// explicitly switched off, so the run cannot proceed.
var ErrStubsDisabled = errors.New("stub fallback disabled and model backend unavailable")
