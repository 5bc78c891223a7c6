//go:build linux

package serial

import (
	"strings"

	"github.com/hedhyw/Go-Serial-Detector/pkg/v1/serialdet"
)

type describedPort struct {
	Path        string
	Description string
}

var listDescribedPorts = func() ([]describedPort, error) {
	devices, err := serialdet.List()
	if err != nil {
		return nil, err
	}
	ports := make([]describedPort, 0, len(devices))
	for _, d := range devices {
		ports = append(ports, describedPort{Path: d.Path(), Description: d.Description()})
	}
	return ports, nil
}

// FindPortByDescription returns the first port whose udev description
// contains substr, ignoring case.
func FindPortByDescription(substr string) (string, error) {
	ports, err := listDescribedPorts()
	if err != nil {
		return "", err
	}
	substr = strings.ToLower(substr)
	for _, p := range ports {
		if strings.Contains(strings.ToLower(p.Description), substr) {
			return p.Path, nil
		}
	}
	return "", ErrPortNotFound
}
