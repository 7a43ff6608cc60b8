package metadata

import (
	"fmt"
	"net"
	"strings"
)

const macLength = 6

// NormalizeMAC returns the upper-case, colon separated form of a 48-bit
// hardware address. EUI-64 and InfiniBand addresses are rejected.
func NormalizeMAC(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}

	hw, err := net.ParseMAC(value)
	if err != nil {
		return "", fmt.Errorf("invalid MAC address %q: %w", value, err)
	}
	if len(hw) != macLength {
		return "", fmt.Errorf("invalid MAC address %q: expected %d bytes, got %d", value, macLength, len(hw))
	}

	return strings.ToUpper(hw.String()), nil
}
