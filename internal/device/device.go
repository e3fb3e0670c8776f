package device

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
)

// DeviceManager identifies the workstation the agent runs on
type DeviceManager struct {
	hostname func() (string, error)
	platform func() (string, error)
}

// NewDeviceManager creates a new device manager
func NewDeviceManager() *DeviceManager {
	return &DeviceManager{
		hostname: os.Hostname,
		platform: platformDeviceID,
	}
}

// Hostname returns the short host name the activity daemon uses in its
// bucket names
func (dm *DeviceManager) Hostname() (string, error) {
	hostname, err := dm.hostname()
	if err != nil {
		return "", fmt.Errorf("failed to get hostname: %w", err)
	}
	hostname = strings.TrimSpace(hostname)
	if hostname == "" {
		return "", fmt.Errorf("empty hostname")
	}
	return hostname, nil
}

// GetOrGenerateDeviceID returns existingID if set, otherwise the platform
// machine id, otherwise a random UUID
func (dm *DeviceManager) GetOrGenerateDeviceID(existingID string) string {
	if existingID != "" {
		return existingID
	}

	deviceID, err := dm.platform()
	if err == nil && deviceID != "" {
		return deviceID
	}

	return uuid.New().String()
}
