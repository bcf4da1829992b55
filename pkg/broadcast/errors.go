package broadcast

import (
	"errors"
	"fmt"
)

var (
	// ErrAfterEnd is returned by a reply channel's Reply method once its
	// End method has already been called.
	ErrAfterEnd = errors.New("broadcast: reply after end")

	// ErrConnectTimeout is wrapped into the error delivered on EventError
	// when no inbound frame arrives before timeout.connect elapses.
	ErrConnectTimeout = errors.New("broadcast: connect timeout")

	// ErrIdleTimeout is wrapped into the error delivered on EventError
	// when no inbound frame arrives before timeout.idle elapses after
	// the first one.
	ErrIdleTimeout = errors.New("broadcast: idle timeout")

	// ErrAlreadyStarted names reuse of a conversation or subscription
	// after it has already run. No function in this package returns it.
	ErrAlreadyStarted = errors.New("broadcast: already started")
)

// TransportOp names the Bus operation a TransportError wraps.
type TransportOp string

const (
	OpPublish   TransportOp = "publish"
	OpSubscribe TransportOp = "subscribe"
	OpClose     TransportOp = "close"
	OpOpen      TransportOp = "open"
)

// TransportError wraps a failure reported by the underlying Bus.
type TransportError struct {
	Op  TransportOp
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("broadcast: transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func newTransportError(op TransportOp, err error) error {
	if err == nil {
		return nil
	}
	return &TransportError{Op: op, Err: err}
}

// These render fixed message literals, preserved exactly for log/test
// compatibility (see the Open Question in DESIGN.md about the
// idle-timeout wording).
func connectTimeoutMessage(connectMillis int64) string {
	return fmt.Sprintf("Did not receive a message within the connect timeout interval of %dms", connectMillis)
}

func idleTimeoutMessage(idleMillis int64) string {
	return fmt.Sprintf("Did not receive a message with the idle timeout interval of %dms", idleMillis)
}

// messageError carries an exact message literal (for wire/log
// compatibility) while still satisfying errors.Is against the sentinel
// it wraps.
type messageError struct {
	msg string
	err error
}

func newWithMessage(sentinel error, msg string) error {
	return &messageError{msg: msg, err: sentinel}
}

func (e *messageError) Error() string { return e.msg }
func (e *messageError) Unwrap() error { return e.err }
