package serial

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// step is one scripted outcome of fakeDevice.Read: data to deliver, or an
// error (ErrWouldBlock, io.EOF, an errno).
type step struct {
	data []byte
	err  error
}

var wouldBlock = step{err: ErrWouldBlock}

func data(s string) step { return step{data: []byte(s)} }

// fakeDevice replays steps. Data larger than the caller's buffer is handed
// out over several reads; an exhausted script reads as ErrWouldBlock, or as
// an endless stream of noise bytes when noise is set.
type fakeDevice struct {
	steps []step
	noise byte

	notTerminal bool
	rawErr      error
	baudErr     error
	flushErr    error
	writeErr    error

	baud     uint32
	buffered int
	flushes  int
	written  bytes.Buffer
	closed   bool
}

func (d *fakeDevice) IsTerminal() bool    { return !d.notTerminal }
func (d *fakeDevice) ConfigureRaw() error { return d.rawErr }

func (d *fakeDevice) SetBaudRate(rate uint32) error {
	if d.baudErr != nil {
		return d.baudErr
	}
	d.baud = rate
	d.flushes++
	return nil
}

func (d *fakeDevice) Flush() error {
	d.flushes++
	return d.flushErr
}

func (d *fakeDevice) Buffered() (int, error) { return d.buffered, nil }

func (d *fakeDevice) Read(p []byte) (int, error) {
	if d.closed {
		return 0, errors.New("read on closed fake")
	}
	if len(d.steps) == 0 {
		if d.noise == 0 {
			return 0, ErrWouldBlock
		}
		for i := range p {
			p[i] = d.noise
		}
		return len(p), nil
	}
	s := &d.steps[0]
	if s.err != nil {
		d.steps = d.steps[1:]
		return 0, s.err
	}
	n := copy(p, s.data)
	s.data = s.data[n:]
	if len(s.data) == 0 {
		d.steps = d.steps[1:]
	}
	return n, nil
}

func (d *fakeDevice) Write(p []byte) (int, error) {
	if d.writeErr != nil {
		return 0, d.writeErr
	}
	return d.written.Write(p)
}

func (d *fakeDevice) Close() error {
	d.closed = true
	return nil
}

type fakeBackend struct {
	dev     *fakeDevice
	openErr error
}

func (b *fakeBackend) Open(string) (Device, error) {
	if b.openErr != nil {
		return nil, b.openErr
	}
	return b.dev, nil
}

func testConfig(t *testing.T, dev *fakeDevice) Config {
	t.Helper()
	return Config{
		Device:       "/dev/ttyFAKE0",
		BaudRate:     115200,
		LockDir:      t.TempDir(),
		SettleDelay:  -1,
		PollInterval: 10 * time.Microsecond,
		Backend:      &fakeBackend{dev: dev},
	}
}

// openFake opens a Conn over a fake device scripted with steps.
func openFake(t *testing.T, steps ...step) (*Conn, *fakeDevice) {
	t.Helper()
	dev := &fakeDevice{steps: steps}
	conn, err := Open(testConfig(t, dev))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn, dev
}

// fragment splits b into pieces of at most size bytes, each followed by a
// would-block.
func fragment(b []byte, size int) []step {
	var steps []step
	for len(b) > 0 {
		n := min(size, len(b))
		steps = append(steps, step{data: append([]byte(nil), b[:n]...)}, wouldBlock)
		b = b[n:]
	}
	return steps
}
