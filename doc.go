// Package serial provides an exclusive, Linux-only serial line transport
// for sensors that stream fixed-size binary frames.
//
// A Conn claims its device with a UUCP-style lock file (/var/lock/LCK..ttyUSB0
// holding the owner's PID, reclaimed when that process is gone), puts the
// line into raw 8N1 mode and sets any integer baud rate through termios2,
// including rates outside the standard B-constants.
//
// Features:
//   - Non-blocking reads with explicit contracts: drain, timed drain,
//     exact-size reads with or without blocking, and exact-size reads with
//     a deadline
//   - ReadAligned, which discards bytes until a frame marker is found and
//     recovers from false partial matches across read boundaries
//   - Single-attempt writes
//   - Port discovery by USB IDs or udev description
//   - Pluggable Backend for tests without hardware
//
// A Conn is not safe for concurrent use. All waiting is done by polling
// with short sleeps, which suits low-baud sensor links.
//
// This package does **not** support Windows.
//
// Example usage:
//
//	conn, err := serial.Open(serial.Config{
//	    Device:   "/dev/ttyUSB0",
//	    BaudRate: 115200,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conn.Close()
//
//	frame := make([]byte, 9)
//	n, err := conn.ReadAligned(frame, []byte{0x59, 0x59}, 100*time.Millisecond)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if n == len(frame) {
//	    fmt.Printf("% x\n", frame)
//	}
package serial
