//go:build linux

package serial

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/sys/unix"
)

type ttyBackend struct{}

func defaultBackend() Backend { return ttyBackend{} }

// Open opens the device non-blocking and without making it the controlling terminal.
func (ttyBackend) Open(path string) (Device, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &ttyDevice{fd: fd}, nil
}

type ttyDevice struct {
	fd int
}

func (d *ttyDevice) IsTerminal() bool {
	_, err := unix.IoctlGetTermios(d.fd, unix.TCGETS)
	return err == nil
}

// ConfigureRaw replaces the line settings with 8N1 raw mode, receiver on,
// modem lines ignored, VMIN=1 and VTIME=0. The speed bits are cleared here
// and restored by SetBaudRate.
func (d *ttyDevice) ConfigureRaw() error {
	var t unix.Termios
	t.Cflag = unix.CS8 | unix.CLOCAL | unix.CREAD
	t.Iflag = unix.IGNPAR
	t.Cc[unix.VMIN] = 1
	t.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(d.fd, unix.TCSETS, &t); err != nil {
		return fmt.Errorf("set termios: %w", err)
	}
	return nil
}

// SetBaudRate writes an arbitrary numeric speed through termios2/BOTHER,
// then drops whatever was queued at the old speed.
func (d *ttyDevice) SetBaudRate(rate uint32) error {
	if rate == 0 {
		return ErrInvalidBaudRate
	}
	t, err := unix.IoctlGetTermios(d.fd, unix.TCGETS2)
	if err != nil {
		return fmt.Errorf("get termios2: %w", err)
	}
	t.Cflag &^= unix.CBAUD
	t.Cflag |= unix.BOTHER
	t.Ispeed = rate
	t.Ospeed = rate
	if err := unix.IoctlSetTermios(d.fd, unix.TCSETS2, t); err != nil {
		return fmt.Errorf("set termios2: %w", err)
	}
	return d.Flush()
}

func (d *ttyDevice) Flush() error {
	if err := unix.IoctlSetInt(d.fd, unix.TCFLSH, unix.TCIOFLUSH); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

func (d *ttyDevice) Buffered() (int, error) {
	n, err := unix.IoctlGetInt(d.fd, unix.TIOCINQ)
	if err != nil {
		return 0, fmt.Errorf("inq: %w", err)
	}
	return n, nil
}

func (d *ttyDevice) Read(p []byte) (int, error) {
	n, err := unix.Read(d.fd, p)
	switch {
	case errors.Is(err, unix.EAGAIN), errors.Is(err, unix.EINTR):
		return 0, ErrWouldBlock
	case err != nil:
		return 0, err
	case n == 0 && len(p) > 0:
		return 0, io.EOF
	}
	return n, nil
}

func (d *ttyDevice) Write(p []byte) (int, error) {
	n, err := unix.Write(d.fd, p)
	if errors.Is(err, unix.EAGAIN) {
		return 0, ErrWouldBlock
	}
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (d *ttyDevice) Close() error {
	return unix.Close(d.fd)
}

// processAlive reports whether pid exists. EPERM still means the process
// is there, owned by someone else.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}
