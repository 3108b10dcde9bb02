package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidOption = errors.New("invalid option")
	ErrTaskBusy      = errors.New("task already running")
	ErrNotRunning    = errors.New("no recipe running")
	ErrNoUserInput   = errors.New("step is not waiting for input")
	ErrUnknownTask   = errors.New("unknown task")
)
