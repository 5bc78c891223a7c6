package serial

// Write makes a single write attempt and returns what the OS accepted,
// which may be less than len(p). Callers needing a full write loop themselves.
func (c *Conn) Write(p []byte) (int, error) {
	if c.dev == nil {
		return 0, ErrNotOpen
	}
	n, err := c.dev.Write(p)
	if err != nil {
		c.log.Error().Err(err).Int("n", len(p)).Msg("write failed")
		return n, &OpError{Op: "write", Device: c.cfg.Device, Err: err}
	}
	return n, nil
}

// WriteString writes s with a single attempt.
func (c *Conn) WriteString(s string) (int, error) {
	return c.Write([]byte(s))
}

// WriteByte writes one byte.
func (c *Conn) WriteByte(b byte) error {
	_, err := c.Write([]byte{b})
	return err
}
