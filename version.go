// Package makergo provides the version information for maker-go.
package makergo

// Version is the current version of maker-go.
const Version = "0.1.0"

// GetVersion returns the current version string.
func GetVersion() string {
	return Version
}
