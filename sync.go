package serial

import (
	"bytes"
	"errors"
	"time"
)

// ReadAligned fills dst with a frame that starts with marker. Bytes before
// the marker are discarded, including a marker prefix that turns out not to
// be followed by the rest of it. A marker split across two reads is found.
//
// It reads no further than the end of the frame, so the following bytes
// stay queued for the next call. timeout follows ReadExactTimeout: the
// short count is returned, with a nil error, when it elapses, whether or not
// bytes are still arriving. A zero timeout allows a single read that yields data.
func (c *Conn) ReadAligned(dst, marker []byte, timeout time.Duration) (int, error) {
	if len(marker) == 0 || len(marker) > len(dst) {
		return 0, ErrInvalidMarker
	}
	scratch := make([]byte, len(dst))
	dl := newDeadline(timeout)
	n := 0
	for n < len(dst) {
		m, err := c.read(scratch[:len(dst)-n])
		if errors.Is(err, ErrWouldBlock) {
			if dl.expired() {
				break
			}
			c.pause()
			continue
		}
		if err != nil {
			return n, err
		}

		chunk := scratch[:m]
		if n == 0 {
			if i := indexMarker(chunk, marker); i >= 0 {
				n = copy(dst, chunk[i:])
			}
		} else {
			n += copy(dst[n:], chunk)
			n = realign(dst[:n], marker)
		}
		// A line that never goes quiet must still honour the deadline.
		if n < len(dst) && dl.expired() {
			break
		}
	}
	return n, nil
}

// indexMarker returns the first offset in buf holding either the whole
// marker or a prefix of it that runs into the end of buf, or -1.
func indexMarker(buf, marker []byte) int {
	for i := range buf {
		j := 0
		for j < len(marker) && i+j < len(buf) && buf[i+j] == marker[j] {
			j++
		}
		if j == len(marker) || i+j == len(buf) && j > 0 {
			return i
		}
	}
	return -1
}

// realign checks that frame still starts with (a prefix of) marker. If not,
// the earliest later offset that does is moved to the front, which keeps the
// longest valid tail. It returns the new fill; zero means nothing survived.
func realign(frame, marker []byte) int {
	k := min(len(frame), len(marker))
	if bytes.Equal(frame[:k], marker[:k]) {
		return len(frame)
	}
	i := indexMarker(frame[1:], marker)
	if i < 0 {
		return 0
	}
	return copy(frame, frame[i+1:])
}
