package driver

import "fmt"

const (
	CodeValidation      = "VALIDATION"
	CodeNoActiveSession = "NO_ACTIVE_SESSION"
	CodeLaunchFailure   = "LAUNCH_FAILURE"
	CodeDriverFailure   = "DRIVER_FAILURE"
	CodeEvalTimeout     = "EVAL_TIMEOUT"
)

// CodedError is a typed error used for stable mapping at the tool and HTTP
// boundaries. The Code prefix in the rendered message lets callers
// pattern-match the failure class without depending on exact wording.
type CodedError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *CodedError) Unwrap() error { return e.Cause }

// NewError builds a CodedError. Exported so session and tool packages can
// produce errors in the same taxonomy.
func NewError(code, msg string, cause error) error {
	return &CodedError{Code: code, Message: msg, Cause: cause}
}
