package serial

import (
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultSettleDelay  = 100 * time.Millisecond
	defaultPollInterval = 100 * time.Microsecond
)

// Config holds configuration parameters for a serial connection.
type Config struct {
	Device   string
	BaudRate uint32 // any positive rate, not only the standard ones

	LockDir      string        // default DefaultLockDir
	SettleDelay  time.Duration // pause between line setup and the initial flush, default 100ms, negative skips it
	PollInterval time.Duration // sleep between polls while waiting for data, default 100µs

	// Backend opens the device. Nil selects the Linux tty backend.
	Backend Backend

	// ProcessAlive decides whether the PID found in a lock file still runs.
	ProcessAlive func(pid int) bool

	Logger *zerolog.Logger
}

func (cfg Config) withDefaults() Config {
	if cfg.LockDir == "" {
		cfg.LockDir = DefaultLockDir
	}
	if cfg.SettleDelay == 0 {
		cfg.SettleDelay = defaultSettleDelay
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.Backend == nil {
		cfg.Backend = defaultBackend()
	}
	if cfg.ProcessAlive == nil {
		cfg.ProcessAlive = processAlive
	}
	return cfg
}

// Conn is one exclusively claimed serial line. The device handle is non-nil
// exactly while the connection is open, and the lock is only held then.
//
// A Conn is not safe for concurrent use; callers serialise access.
type Conn struct {
	cfg  Config
	baud uint32
	dev  Device
	lock *deviceLock
	log  zerolog.Logger
}

// New returns a closed connection for cfg. No I/O happens until Open.
func New(cfg Config) *Conn {
	cfg = cfg.withDefaults()
	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}
	return &Conn{
		cfg:  cfg,
		baud: cfg.BaudRate,
		log:  log.With().Str("device", cfg.Device).Logger(),
	}
}

// Open creates a connection for cfg and opens it.
func Open(cfg Config) (*Conn, error) {
	c := New(cfg)
	if err := c.Open(); err != nil {
		return nil, err
	}
	return c, nil
}

// Open claims and configures the device: open, tty check, lock, raw mode,
// baud rate, settle delay, flush. On any failure the connection is left
// fully closed with no lock file behind. Opening an open Conn does nothing.
func (c *Conn) Open() error {
	if c.dev != nil {
		return nil
	}
	dev, err := c.cfg.Backend.Open(c.cfg.Device)
	if err != nil {
		return &OpError{Op: "open", Device: c.cfg.Device, Err: err}
	}
	c.dev = dev

	if !dev.IsTerminal() {
		c.teardown()
		return ErrNotTerminal
	}

	lock, err := acquireLock(c.cfg.LockDir, c.cfg.Device, c.cfg.ProcessAlive, c.log)
	if err != nil {
		c.teardown()
		return err
	}
	c.lock = lock

	if err := dev.ConfigureRaw(); err != nil {
		c.teardown()
		return &OpError{Op: "configure", Device: c.cfg.Device, Err: err}
	}
	if err := dev.SetBaudRate(c.baud); err != nil {
		c.teardown()
		return &OpError{Op: "baud", Device: c.cfg.Device, Err: err}
	}

	if c.cfg.SettleDelay > 0 {
		time.Sleep(c.cfg.SettleDelay)
	}
	if err := dev.Flush(); err != nil {
		c.teardown()
		return &OpError{Op: "flush", Device: c.cfg.Device, Err: err}
	}

	c.log.Debug().Uint32("baud", c.baud).Msg("serial opened")
	return nil
}

// Close flushes pending I/O, closes the device and removes the lock file.
// The handles are released even when the flush fails; the flush error is
// still returned. Safe to call multiple times; subsequent calls are no-ops.
func (c *Conn) Close() error {
	if c.dev == nil && c.lock == nil {
		return nil
	}
	var flushErr error
	if c.dev != nil {
		flushErr = c.dev.Flush()
	}
	err := c.teardown()
	if err == nil && flushErr != nil {
		err = &OpError{Op: "flush", Device: c.cfg.Device, Err: flushErr}
	}
	c.log.Debug().Msg("serial closed")
	return err
}

func (c *Conn) teardown() error {
	var err error
	if c.dev != nil {
		err = c.dev.Close()
		c.dev = nil
	}
	if lerr := c.lock.release(); lerr != nil && err == nil {
		err = lerr
	}
	c.lock = nil
	return err
}

// IsOpen reports whether the device handle is valid.
func (c *Conn) IsOpen() bool {
	return c.dev != nil
}

// Device returns the configured device path.
func (c *Conn) Device() string {
	return c.cfg.Device
}

// BaudRate returns the configured rate, which is also the rate used by the
// next Open while closed.
func (c *Conn) BaudRate() uint32 {
	return c.baud
}

// SetBaudRate stores rate for the next Open, or reconfigures the open line
// immediately. Bytes queued at the old speed are discarded.
func (c *Conn) SetBaudRate(rate uint32) error {
	if rate == 0 {
		return ErrInvalidBaudRate
	}
	if c.dev == nil {
		c.baud = rate
		return nil
	}
	if err := c.dev.SetBaudRate(rate); err != nil {
		return &OpError{Op: "baud", Device: c.cfg.Device, Err: err}
	}
	c.baud = rate
	c.log.Debug().Uint32("baud", rate).Msg("baud rate changed")
	return nil
}

// Flush discards both the unread input and the untransmitted output.
func (c *Conn) Flush() error {
	if c.dev == nil {
		return ErrNotOpen
	}
	if err := c.dev.Flush(); err != nil {
		return &OpError{Op: "flush", Device: c.cfg.Device, Err: err}
	}
	return nil
}

// Buffered returns the number of received bytes waiting in the OS queue.
func (c *Conn) Buffered() (int, error) {
	if c.dev == nil {
		return 0, ErrNotOpen
	}
	n, err := c.dev.Buffered()
	if err != nil {
		return 0, &OpError{Op: "buffered", Device: c.cfg.Device, Err: err}
	}
	return n, nil
}
