// Package platform holds the small amount of OS-specific knowledge envmerge
// needs: whether environment variable names are case-insensitive.
package platform

import (
	"fmt"
	"strings"
)

// OS name constants for runtime.GOOS comparisons.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
)

// IsCaseInsensitive reports whether environment variable names are matched
// case-insensitively on goos.
func IsCaseInsensitive(goos string) bool {
	return goos == Windows
}

// NormalizeKey returns the key used to compare variable names. It is the
// identity on case-sensitive platforms.
func NormalizeKey(name string, caseInsensitive bool) string {
	if caseInsensitive {
		return strings.ToLower(name)
	}
	return name
}

// ParseCaseMode resolves a configured case mode ("auto", "true", "false",
// "insensitive", "sensitive") against goos.
func ParseCaseMode(mode, goos string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "auto":
		return IsCaseInsensitive(goos), nil
	case "true", "insensitive", "yes", "on":
		return true, nil
	case "false", "sensitive", "no", "off":
		return false, nil
	default:
		return false, &UnknownCaseModeError{Mode: mode}
	}
}

// UnknownCaseModeError is returned by ParseCaseMode for unrecognised modes
type UnknownCaseModeError struct {
	Mode string
}

func (e *UnknownCaseModeError) Error() string {
	return fmt.Sprintf("unknown case mode %q (want auto, true or false)", e.Mode)
}
