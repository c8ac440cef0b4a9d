package wg

import (
	"fmt"

	"github.com/pkg/errors"
)

type ExternalToolFailureError struct {
	Interface string
	Stderr    string
	Reason    string
	cause     error
}

func (e ExternalToolFailureError) Error() string {
	msg := fmt.Sprintf("wg show %s dump failed", e.Interface)
	if e.Reason != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Reason)
	}
	if e.cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.cause)
	}
	if e.Stderr != "" {
		msg = fmt.Sprintf("%s (stderr: %s)", msg, e.Stderr)
	}

	return msg
}

func IsExternalToolFailure(err error) bool {
	_, ok := errors.Cause(err).(ExternalToolFailureError)
	return ok
}
