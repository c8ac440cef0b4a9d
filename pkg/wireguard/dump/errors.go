package dump

import (
	"fmt"

	"github.com/pkg/errors"
)

type MalformedRecordError struct {
	Line   string
	Reason string
}

func (e MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed dump record %q: %s", e.Line, e.Reason)
}

func IsMalformedRecord(err error) bool {
	_, ok := errors.Cause(err).(MalformedRecordError)
	return ok
}

type DuplicateInterfaceError struct {
	Interface string
}

func (e DuplicateInterfaceError) Error() string {
	return fmt.Sprintf("interface %q is already present in the snapshot", e.Interface)
}

func IsDuplicateInterface(err error) bool {
	_, ok := errors.Cause(err).(DuplicateInterfaceError)
	return ok
}
