package serial

import (
	"errors"
	"fmt"
	"io"
)

var (
	// ErrLocked is returned by Open when a live process holds the device lock file.
	ErrLocked = errors.New("serial: device is locked by another process")

	// ErrNotOpen is returned by I/O on a closed connection, including after the peer closed it.
	ErrNotOpen = errors.New("serial: connection is not open")
	// ErrNotTerminal is returned by Open when the device is not a tty.
	ErrNotTerminal = errors.New("serial: device is not a terminal")
	// ErrInvalidBaudRate is returned for a zero baud rate.
	ErrInvalidBaudRate = errors.New("serial: invalid baud rate")
	// ErrInvalidMarker is returned by ReadAligned for an empty marker or one longer than the destination.
	ErrInvalidMarker = errors.New("serial: marker must be non-empty and fit in the destination")
	// ErrUnsupported is returned by the default backend on platforms other than Linux.
	ErrUnsupported = errors.New("serial: platform not supported")

	// ErrWouldBlock is returned by a Device when no data is currently available.
	// The read helpers of Conn treat it as "nothing yet" and never return it.
	ErrWouldBlock = errors.New("serial: operation would block")

	// ErrPeerClosed is returned by the read that observed the remote end closing
	// the device. The connection is closed by then.
	ErrPeerClosed = fmt.Errorf("serial: device closed by peer: %w", io.EOF)
)

// OpError wraps a system error with the operation and device it came from.
// The OS error code can be recovered with errors.As(err, &unix.Errno).
type OpError struct {
	Op     string
	Device string
	Err    error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("serial %s %s: %v", e.Op, e.Device, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}
