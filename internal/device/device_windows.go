//go:build windows

package device

import (
	"fmt"
	"strings"

	"golang.org/x/sys/windows/registry"
)

// platformDeviceID reads the Windows machine GUID
func platformDeviceID() (string, error) {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE,
		`SOFTWARE\Microsoft\Cryptography`, registry.QUERY_VALUE|registry.WOW64_64KEY)
	if err != nil {
		return "", fmt.Errorf("failed to open cryptography key: %w", err)
	}
	defer key.Close()

	guid, _, err := key.GetStringValue("MachineGuid")
	if err != nil {
		return "", fmt.Errorf("failed to read MachineGuid: %w", err)
	}
	return strings.TrimSpace(guid), nil
}
