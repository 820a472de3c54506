package monitor

import "errors"

// Errors that could be occurred during frame pushing.
var (
	ErrBrokenPipe         = errors.New("broken low-level pipe")
	ErrBufferExceed       = errors.New("session send buffer exceed")
	ErrCloseClosedSession = errors.New("close closed session")
	ErrCloseClosedBoard   = errors.New("close closed board")
	ErrClosedBoard        = errors.New("board closed")
	ErrSessionDuplication = errors.New("session has existed in the current board")
)
