package serial

import (
	"errors"
	"fmt"
	"strings"

	"go.bug.st/serial/enumerator"
)

// ErrPortNotFound is returned when no attached port matches a search.
var ErrPortNotFound = errors.New("serial: no matching port found")

// PortInfo describes a serial port attached to the system.
type PortInfo struct {
	Path         string
	IsUSB        bool
	VID          string
	PID          string
	SerialNumber string
	Product      string
}

var listDetailedPorts = enumerator.GetDetailedPortsList

// ListPorts returns the serial ports currently attached.
func ListPorts() ([]PortInfo, error) {
	details, err := listDetailedPorts()
	if err != nil {
		return nil, fmt.Errorf("list ports: %w", err)
	}
	ports := make([]PortInfo, 0, len(details))
	for _, d := range details {
		ports = append(ports, PortInfo{
			Path:         d.Name,
			IsUSB:        d.IsUSB,
			VID:          d.VID,
			PID:          d.PID,
			SerialNumber: d.SerialNumber,
			Product:      d.Product,
		})
	}
	return ports, nil
}

// FindPort returns the path of the first USB port with the given vendor and
// product IDs (hex, case-insensitive), e.g. "10c4" and "ea60" for a CP210x.
func FindPort(vid, pid string) (string, error) {
	ports, err := ListPorts()
	if err != nil {
		return "", err
	}
	for _, p := range ports {
		if p.IsUSB && strings.EqualFold(p.VID, vid) && strings.EqualFold(p.PID, pid) {
			return p.Path, nil
		}
	}
	return "", ErrPortNotFound
}
