package serial

import (
	"bytes"
	"errors"
	"io"
	"time"
)

// Forever disables the deadline of a timed read.
const Forever time.Duration = -1

const chunkSize = 1024

// read is the single primitive every read helper is built on. It never
// returns (0, nil): either bytes, ErrWouldBlock, or a terminal error.
func (c *Conn) read(p []byte) (int, error) {
	if c.dev == nil {
		return 0, ErrNotOpen
	}
	n, err := c.dev.Read(p)
	switch {
	case errors.Is(err, ErrWouldBlock):
		return 0, ErrWouldBlock
	case errors.Is(err, io.EOF), err == nil && n == 0:
		c.log.Warn().Msg("device closed by peer")
		c.Close()
		return 0, ErrPeerClosed
	case err != nil:
		return 0, &OpError{Op: "read", Device: c.cfg.Device, Err: err}
	}
	return n, nil
}

// deadline tracks a timed read. Zero means one attempt only, negative means
// no deadline.
type deadline struct {
	start   time.Time
	timeout time.Duration
}

func newDeadline(timeout time.Duration) deadline {
	return deadline{start: time.Now(), timeout: timeout}
}

// expired reports whether the caller should give up after a would-block.
func (d deadline) expired() bool {
	if d.timeout < 0 {
		return false
	}
	return d.timeout == 0 || time.Since(d.start) >= d.timeout
}

func (c *Conn) pause() {
	time.Sleep(c.cfg.PollInterval)
}

// ReadAvailable appends everything currently queued by the OS to dst and
// returns as soon as nothing more is available.
func (c *Conn) ReadAvailable(dst *bytes.Buffer) (int, error) {
	var buf [chunkSize]byte
	total := 0
	for {
		n, err := c.read(buf[:])
		if errors.Is(err, ErrWouldBlock) {
			return total, nil
		}
		if err != nil {
			return total, err
		}
		dst.Write(buf[:n])
		total += n
	}
}

// ReadAvailableFor keeps appending to dst until the queue is empty and
// budget has elapsed. It is a best-effort drain: running out of time is not
// an error, and the count may be zero. A zero budget behaves like
// ReadAvailable; with Forever it only returns on an error.
func (c *Conn) ReadAvailableFor(dst *bytes.Buffer, budget time.Duration) (int, error) {
	var buf [chunkSize]byte
	total := 0
	dl := newDeadline(budget)
	for {
		n, err := c.read(buf[:])
		switch {
		case errors.Is(err, ErrWouldBlock):
			if dl.expired() {
				return total, nil
			}
			c.pause()
			continue
		case err != nil:
			return total, err
		}
		dst.Write(buf[:n])
		total += n
	}
}

// ReadAvailableBytes drains the OS queue into a new slice.
func (c *Conn) ReadAvailableBytes() ([]byte, error) {
	var dst bytes.Buffer
	_, err := c.ReadAvailable(&dst)
	return dst.Bytes(), err
}

// ReadExact fills p. With block set it waits until len(p) bytes arrived;
// otherwise it returns the short count at the first moment nothing is queued.
func (c *Conn) ReadExact(p []byte, block bool) (int, error) {
	if block {
		return c.ReadExactTimeout(p, Forever)
	}
	return c.ReadExactTimeout(p, 0)
}

// AppendExact is ReadExact for a growable destination: it appends up to n
// bytes to dst and returns the extended slice with the number appended.
func (c *Conn) AppendExact(dst []byte, n int, block bool) ([]byte, int, error) {
	var buf [chunkSize]byte
	timeout := time.Duration(0)
	if block {
		timeout = Forever
	}
	dl := newDeadline(timeout)
	nread := 0
	for nread < n {
		m, err := c.read(buf[:min(n-nread, len(buf))])
		if errors.Is(err, ErrWouldBlock) {
			if dl.expired() {
				break
			}
			c.pause()
			continue
		}
		if err != nil {
			return dst, nread, err
		}
		dst = append(dst, buf[:m]...)
		nread += m
	}
	return dst, nread, nil
}

// ReadExactTimeout fills p, polling until timeout elapses. A timeout of zero
// makes a single attempt and Forever waits without limit. Running out of
// time yields the short count and a nil error.
func (c *Conn) ReadExactTimeout(p []byte, timeout time.Duration) (int, error) {
	dl := newDeadline(timeout)
	nread := 0
	for nread < len(p) {
		n, err := c.read(p[nread:])
		if errors.Is(err, ErrWouldBlock) {
			if dl.expired() {
				break
			}
			c.pause()
			continue
		}
		if err != nil {
			return nread, err
		}
		nread += n
	}
	return nread, nil
}
