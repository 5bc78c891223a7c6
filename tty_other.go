//go:build !linux

package serial

type unsupportedBackend struct{}

func defaultBackend() Backend { return unsupportedBackend{} }

func (unsupportedBackend) Open(string) (Device, error) {
	return nil, ErrUnsupported
}

// processAlive cannot tell on this platform; locks are never reclaimed.
func processAlive(pid int) bool {
	return pid > 0
}
