// SPDX-License-Identifier: MPL-2.0

package platform

import "strings"

// windowsReservedNames cannot be used as file names on Windows, with or
// without an extension.
var windowsReservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true,
	"COM5": true, "COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true,
	"LPT5": true, "LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// IsWindowsReservedName reports whether name, ignoring case and extension,
// is a reserved device name on Windows.
func IsWindowsReservedName(name string) bool {
	upper := strings.ToUpper(name)
	if idx := strings.Index(upper, "."); idx != -1 {
		upper = upper[:idx]
	}
	return windowsReservedNames[upper]
}

// PortabilityProblem returns why name, a single path element, cannot be
// created on every supported OS, or "" when it can.
func PortabilityProblem(name string) string {
	switch {
	case IsWindowsReservedName(name):
		return "reserved device name on Windows"
	case strings.ContainsAny(name, `<>:"\|?*`):
		return `contains a character Windows does not allow (<>:"\|?*)`
	case strings.HasSuffix(name, ".") || strings.HasSuffix(name, " "):
		return "ends with a dot or space, which Windows strips"
	}
	for _, r := range name {
		if r < 0x20 {
			return "contains a control character"
		}
	}
	return ""
}
