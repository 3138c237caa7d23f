// package errs defines the error kinds shared by the scheduler and render
// pipeline. Boundary operations across the core wrap one of these sentinels
// with fmt.Errorf("%w", ...) so callers can classify a failure with errors.Is
// without string matching.
package errs

import "errors"

// Kind classifies why a boundary operation failed.
type Kind int

const (
	// KindInvalidState indicates the operation was called in the wrong phase,
	// e.g. submitting a render command before the queue is initialized, or
	// beginning a pass while another pass is already active.
	KindInvalidState Kind = iota

	// KindInvalidParameter indicates a bad handle, nonsensical size, or nil
	// pointer was passed to an operation.
	KindInvalidParameter

	// KindResourceExhaustion indicates a bounded resource (a queue, a texture
	// slot table) is full.
	KindResourceExhaustion

	// KindBackendFailure indicates the graphics driver returned an error from
	// a GPU call.
	KindBackendFailure

	// KindNotSupported indicates the requested enum value or feature is absent
	// on the active backend.
	KindNotSupported
)

func (k Kind) String() string {
	switch k {
	case KindInvalidState:
		return "invalid state"
	case KindInvalidParameter:
		return "invalid parameter"
	case KindResourceExhaustion:
		return "resource exhaustion"
	case KindBackendFailure:
		return "backend failure"
	case KindNotSupported:
		return "not supported"
	default:
		return "unknown"
	}
}

// Sentinels usable with errors.Is. Each one carries no message of its own;
// wrap it with fmt.Errorf("%w: <detail>", errs.InvalidState) at the call site.
var (
	InvalidState       = errors.New(KindInvalidState.String())
	InvalidParameter   = errors.New(KindInvalidParameter.String())
	ResourceExhaustion = errors.New(KindResourceExhaustion.String())
	BackendFailure     = errors.New(KindBackendFailure.String())
	NotSupported       = errors.New(KindNotSupported.String())
)

// KindOf returns the Kind of err if it wraps one of the package sentinels,
// and false otherwise.
func KindOf(err error) (Kind, bool) {
	switch {
	case errors.Is(err, InvalidState):
		return KindInvalidState, true
	case errors.Is(err, InvalidParameter):
		return KindInvalidParameter, true
	case errors.Is(err, ResourceExhaustion):
		return KindResourceExhaustion, true
	case errors.Is(err, BackendFailure):
		return KindBackendFailure, true
	case errors.Is(err, NotSupported):
		return KindNotSupported, true
	default:
		return 0, false
	}
}
