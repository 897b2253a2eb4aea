package protocol

import "errors"

var (
	ErrUnknownCommand = errors.New("protocol: unknown command")
	ErrMissingStatus  = errors.New("protocol: missing status field")
)
