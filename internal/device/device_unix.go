//go:build !windows

package device

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

func platformDeviceID() (string, error) {
	if runtime.GOOS == "darwin" {
		return darwinDeviceID()
	}
	return machineID()
}

// darwinDeviceID reads the hardware UUID from system_profiler
func darwinDeviceID() (string, error) {
	output, err := exec.Command("system_profiler", "SPHardwareDataType").Output()
	if err != nil {
		return "", fmt.Errorf("system_profiler failed: %w", err)
	}
	for _, line := range strings.Split(string(output), "\n") {
		if strings.Contains(line, "Hardware UUID") {
			parts := strings.SplitN(line, ":", 2)
			if len(parts) == 2 {
				return strings.TrimSpace(parts[1]), nil
			}
		}
	}
	return "", fmt.Errorf("hardware UUID not found")
}

func machineID() (string, error) {
	for _, path := range []string{"/etc/machine-id", "/var/lib/dbus/machine-id"} {
		data, err := os.ReadFile(path)
		if err == nil && len(strings.TrimSpace(string(data))) > 0 {
			return strings.TrimSpace(string(data)), nil
		}
	}
	return "", fmt.Errorf("could not determine machine id")
}
