package peernames

import (
	"fmt"

	"github.com/pkg/errors"
)

type InvalidConfigError struct {
	Reason string
	cause  error
}

func (e InvalidConfigError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("invalid peer config: %v", e.cause)
	}

	return fmt.Sprintf("invalid peer config: %s", e.Reason)
}

func IsInvalidConfig(err error) bool {
	_, ok := errors.Cause(err).(InvalidConfigError)
	return ok
}

type InvalidPeerCommentError struct {
	PublicKey string
	Comment   string
	Reason    string
}

func (e InvalidPeerCommentError) Error() string {
	return fmt.Sprintf("invalid comment %q on peer %q: %s", e.Comment, e.PublicKey, e.Reason)
}

func IsInvalidPeerComment(err error) bool {
	_, ok := errors.Cause(err).(InvalidPeerCommentError)
	return ok
}

type InvalidNameMappingError struct {
	cause error
}

func (e InvalidNameMappingError) Error() string {
	return fmt.Sprintf("invalid peer name mapping: expected a JSON object mapping public keys to names: %v", e.cause)
}

func IsInvalidNameMapping(err error) bool {
	_, ok := errors.Cause(err).(InvalidNameMappingError)
	return ok
}
