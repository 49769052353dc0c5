package router

import "fmt"

// ErrorKind classifies a router-side invocation failure. Every backend —
// native or Wasm — reports failures through one of these kinds so the
// dispatcher can map them onto wire error codes uniformly.
type ErrorKind int

const (
	ErrNotFound ErrorKind = iota
	ErrInvalidParameters
	ErrExecution
	ErrSchema
	ErrInternal
)

func (k ErrorKind) String() string {
	switch k {
	case ErrNotFound:
		return "not found"
	case ErrInvalidParameters:
		return "invalid parameters"
	case ErrExecution:
		return "execution error"
	case ErrSchema:
		return "schema error"
	default:
		return "internal error"
	}
}

// ToolError is a tools/call failure reported by a router.
type ToolError struct {
	Kind    ErrorKind
	Message string
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool error (%s): %s", e.Kind, e.Message)
}

// ResourceError is a resources/read failure reported by a router.
type ResourceError struct {
	Kind    ErrorKind
	Message string
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("resource error (%s): %s", e.Kind, e.Message)
}

// PromptError is a prompts/get failure reported by a router.
type PromptError struct {
	Kind    ErrorKind
	Message string
}

func (e *PromptError) Error() string {
	return fmt.Sprintf("prompt error (%s): %s", e.Kind, e.Message)
}

// KindOf extracts the ErrorKind from a router domain error, reporting
// whether err is one. Non-domain errors (context cancellation, host
// failures) return false.
func KindOf(err error) (ErrorKind, bool) {
	switch e := err.(type) {
	case *ToolError:
		return e.Kind, true
	case *ResourceError:
		return e.Kind, true
	case *PromptError:
		return e.Kind, true
	default:
		return 0, false
	}
}
