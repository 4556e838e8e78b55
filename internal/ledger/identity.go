package ledger

import "strings"

// DeviceKey is the grouping identity of a catalog item: the device code when
// there is one, the trimmed name otherwise. An empty result means the row
// cannot be attributed to any device.
func DeviceKey(code, name string) string {
	if key := strings.TrimSpace(code); key != "" {
		return key
	}
	return strings.TrimSpace(name)
}
