package fetch

import "errors"

var (
	// ErrInvalidArgument marks malformed user input such as an age token.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrEnumeration marks a run aborted because the container could not be listed.
	ErrEnumeration = errors.New("enumeration failed")
)
