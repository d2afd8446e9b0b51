package logic

import "errors"

var (
	// ErrBadRequest marks errors caused by the caller's input.
	ErrBadRequest = errors.New("bad request")
	// ErrDexDisabled is returned when no pair source is configured.
	ErrDexDisabled = errors.New("dex poller not configured")
)
