package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrBusy            = errors.New("generation in progress")
	ErrEmptyQuery      = errors.New("empty query")
	ErrInvalidClass    = errors.New("invalid classification")
	ErrUnknownTemplate = errors.New("unknown template")
	ErrNotReady        = errors.New("no video ready")
	ErrClosed          = errors.New("session closed")
)
