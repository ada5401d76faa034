package platform

import (
	"errors"
	"fmt"
)

// ErrUnavailable reports that a capability disappeared between enumeration
// and use (e.g. a monitor was unplugged). Callers treat it as a detach
// event, not a crash.
var ErrUnavailable = errors.New("platform: capability unavailable")

// SurfaceError reports an overlay creation or render failure for one
// monitor. It isolates that monitor; other overlays continue.
type SurfaceError struct {
	Monitor MonitorID
	Err     error
}

func (e *SurfaceError) Error() string {
	return fmt.Sprintf("surface error on monitor %q: %v", e.Monitor, e.Err)
}

func (e *SurfaceError) Unwrap() error { return e.Err }

// InputHookError reports a failure to register the global cursor feed.
// It is fatal: the engine cannot run without cursor data.
type InputHookError struct {
	Err error
}

func (e *InputHookError) Error() string {
	return fmt.Sprintf("input hook error: %v", e.Err)
}

func (e *InputHookError) Unwrap() error { return e.Err }
