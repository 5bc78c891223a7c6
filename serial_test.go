package serial

import (
	"errors"
	"os"
	"strconv"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConn_OpenClose(t *testing.T) {
	dev := &fakeDevice{}
	cfg := testConfig(t, dev)
	conn := New(cfg)
	require.False(t, conn.IsOpen())

	require.NoError(t, conn.Open())
	require.True(t, conn.IsOpen())
	require.NoError(t, conn.Open(), "opening twice is a no-op")
	require.Equal(t, uint32(115200), dev.baud)
	require.Positive(t, dev.flushes)

	lock := LockPath(cfg.LockDir, cfg.Device)
	content, err := os.ReadFile(lock)
	require.NoError(t, err)
	require.Equal(t, strconv.Itoa(os.Getpid())+"\n", string(content))

	require.NoError(t, conn.Close())
	require.False(t, conn.IsOpen())
	require.True(t, dev.closed)
	require.NoFileExists(t, lock)

	require.NoError(t, conn.Close(), "close is idempotent")
}

func TestConn_OpenFailureLeavesNothingBehind(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name    string
		dev     *fakeDevice
		openErr error
		wantErr error
	}{
		{name: "backend open", dev: &fakeDevice{}, openErr: syscall.ENOENT, wantErr: syscall.ENOENT},
		{name: "not a terminal", dev: &fakeDevice{notTerminal: true}, wantErr: ErrNotTerminal},
		{name: "raw mode", dev: &fakeDevice{rawErr: boom}, wantErr: boom},
		{name: "baud rate", dev: &fakeDevice{baudErr: syscall.EINVAL}, wantErr: syscall.EINVAL},
		{name: "flush", dev: &fakeDevice{flushErr: boom}, wantErr: boom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, tt.dev)
			cfg.Backend = &fakeBackend{dev: tt.dev, openErr: tt.openErr}
			conn := New(cfg)

			err := conn.Open()
			require.ErrorIs(t, err, tt.wantErr)
			require.False(t, conn.IsOpen())
			require.NoFileExists(t, LockPath(cfg.LockDir, cfg.Device))
			if tt.openErr == nil {
				require.True(t, tt.dev.closed, "device handle must not leak")
			}

			require.NoError(t, conn.Close())
			require.NoError(t, conn.Close())
		})
	}
}

func TestConn_OpenLockedByLiveProcess(t *testing.T) {
	dev := &fakeDevice{}
	cfg := testConfig(t, dev)
	cfg.ProcessAlive = func(pid int) bool { return pid == 4242 }
	lock := LockPath(cfg.LockDir, cfg.Device)
	require.NoError(t, os.WriteFile(lock, []byte("4242\n"), 0o644))

	conn := New(cfg)
	err := conn.Open()
	require.ErrorIs(t, err, ErrLocked)
	require.False(t, conn.IsOpen())
	require.True(t, dev.closed)

	content, err := os.ReadFile(lock)
	require.NoError(t, err)
	require.Equal(t, "4242\n", string(content), "a live lock is left untouched")

	require.NoError(t, conn.Close())
	require.FileExists(t, lock)
}

func TestConn_SetBaudRate(t *testing.T) {
	dev := &fakeDevice{}
	conn := New(testConfig(t, dev))

	// 250000 is not one of the termios B-constants.
	require.NoError(t, conn.SetBaudRate(250000))
	require.Equal(t, uint32(250000), conn.BaudRate())
	require.Zero(t, dev.baud, "closed connection only stores the rate")

	require.NoError(t, conn.Open())
	defer conn.Close()
	require.Equal(t, uint32(250000), dev.baud)

	flushes := dev.flushes
	require.NoError(t, conn.SetBaudRate(1234567))
	require.Equal(t, uint32(1234567), dev.baud)
	require.Equal(t, uint32(1234567), conn.BaudRate())
	require.Greater(t, dev.flushes, flushes)

	require.ErrorIs(t, conn.SetBaudRate(0), ErrInvalidBaudRate)

	dev.baudErr = syscall.EINVAL
	err := conn.SetBaudRate(9600)
	require.ErrorIs(t, err, syscall.EINVAL)
	require.Equal(t, uint32(1234567), conn.BaudRate())
}

func TestConn_Buffered(t *testing.T) {
	conn, dev := openFake(t)
	dev.buffered = 7

	n, err := conn.Buffered()
	require.NoError(t, err)
	require.Equal(t, 7, n)
	require.NoError(t, conn.Flush())

	require.NoError(t, conn.Close())
	_, err = conn.Buffered()
	require.ErrorIs(t, err, ErrNotOpen)
	require.ErrorIs(t, conn.Flush(), ErrNotOpen)
}

func TestConn_Write(t *testing.T) {
	conn, dev := openFake(t)

	n, err := conn.Write([]byte{0x5a, 0x04})
	require.NoError(t, err)
	require.Equal(t, 2, n)
	_, err = conn.WriteString("hi")
	require.NoError(t, err)
	require.NoError(t, conn.WriteByte(0x01))
	require.Equal(t, []byte{0x5a, 0x04, 'h', 'i', 0x01}, dev.written.Bytes())

	dev.writeErr = syscall.EIO
	_, err = conn.Write([]byte("x"))
	var opErr *OpError
	require.ErrorAs(t, err, &opErr)
	require.Equal(t, "write", opErr.Op)
	require.ErrorIs(t, err, syscall.EIO)

	require.NoError(t, conn.Close())
	require.ErrorIs(t, conn.WriteByte(0), ErrNotOpen)
}

func TestConn_CloseReportsFlushFailure(t *testing.T) {
	conn, dev := openFake(t)
	lock := LockPath(conn.cfg.LockDir, conn.Device())
	dev.flushErr = syscall.EIO

	err := conn.Close()
	var opErr *OpError
	require.ErrorAs(t, err, &opErr)
	require.Equal(t, "flush", opErr.Op)
	require.ErrorIs(t, err, syscall.EIO)

	require.False(t, conn.IsOpen())
	require.True(t, dev.closed)
	require.NoFileExists(t, lock)
	require.NoError(t, conn.Close())
}
