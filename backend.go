package serial

// Backend opens devices. The default backend talks to Linux ttys through
// termios ioctls; tests substitute a scripted one.
type Backend interface {
	Open(path string) (Device, error)
}

// Device is an opened character device. Read and Write are single
// non-blocking attempts: Read returns ErrWouldBlock when nothing is queued
// and io.EOF when the peer closed the line.
type Device interface {
	IsTerminal() bool
	ConfigureRaw() error
	SetBaudRate(rate uint32) error
	Flush() error
	Buffered() (int, error)
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
}
