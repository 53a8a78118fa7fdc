// Package validation checks values that end up verbatim in generated files,
// file names and unit names.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// Valid interface name: alphanumeric, dash, underscore, dot (for VLANs), max 15 chars
	interfaceNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]{1,15}$`)

	// Characters that would end or split a line of a generated file.
	lineBreakChars = "\x00\r\n"
)

// MaxSSIDLen is the 802.11 limit on SSID length, in bytes.
const MaxSSIDLen = 32

// ValidateInterfaceName validates a network interface name. Names become part
// of file and unit names, so "." and ".." are rejected as well.
func ValidateInterfaceName(name string) error {
	if name == "" {
		return fmt.Errorf("interface name cannot be empty")
	}

	if len(name) > 15 {
		return fmt.Errorf("interface name too long (max 15 characters): %s", name)
	}

	if !interfaceNameRegex.MatchString(name) {
		return fmt.Errorf("invalid interface name: %q (must be alphanumeric with -_.)", name)
	}

	if name == "." || name == ".." {
		return fmt.Errorf("invalid interface name: %s", name)
	}

	return nil
}

// ValidateSSID validates a network name.
func ValidateSSID(ssid string) error {
	if ssid == "" {
		return fmt.Errorf("SSID cannot be empty")
	}
	if len(ssid) > MaxSSIDLen {
		return fmt.Errorf("SSID too long (max %d bytes): %s", MaxSSIDLen, ssid)
	}
	return ValidateValue(ssid)
}

// ValidateValue rejects values that cannot be written on a single line.
func ValidateValue(value string) error {
	if strings.ContainsAny(value, lineBreakChars) {
		return fmt.Errorf("value contains a line break or null byte")
	}
	return nil
}
