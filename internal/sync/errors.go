package sync

import (
	"errors"
	"fmt"
)

var (
	ErrNotSaved    = errors.New("sync: save must be called before wait")
	ErrNoRegistry  = errors.New("sync: registry is required")
	ErrNoTransport = errors.New("sync: transport is required")
)

// UnexpectedStateError reports a remote version state the coordinator does
// not know how to proceed from.
type UnexpectedStateError struct {
	VersionID string
	State     VersionState
}

func (e *UnexpectedStateError) Error() string {
	return fmt.Sprintf("sync: artifact version %s in unexpected state %q", e.VersionID, e.State)
}
