//go:build !linux

package serial

// FindPortByDescription needs udev descriptions and always fails off Linux.
func FindPortByDescription(string) (string, error) {
	// no-op for other OSes
	return "", ErrPortNotFound
}
