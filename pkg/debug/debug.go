// Package debug provides global debug logging flags
package debug

import (
	"fmt"
	"os"
)

// Enabled controls whether debug logging is active
var Enabled bool

// Tracking controls whether verbose per-frame tracking logs are shown
// (detection, gaze, head pose, motion). Use --debug-tracking or
// DEBUG_TRACKING=1 to enable these very verbose logs
var Tracking bool

// InitFromEnv sets the flags from DEBUG and DEBUG_TRACKING.
// Command-line flags may still override them afterwards.
func InitFromEnv() {
	if os.Getenv("DEBUG") == "1" || os.Getenv("DEBUG") == "true" {
		Enabled = true
	}
	if os.Getenv("DEBUG_TRACKING") == "1" || os.Getenv("DEBUG_TRACKING") == "true" {
		Tracking = true
	}
}

// Log prints a message only if debug mode is enabled
func Log(format string, args ...interface{}) {
	if Enabled {
		fmt.Printf(format, args...)
	}
}

// Logln prints a message with newline only if debug mode is enabled
func Logln(msg string) {
	if Enabled {
		fmt.Println(msg)
	}
}

// TrackLog prints a message only if tracking debug mode is enabled
func TrackLog(format string, args ...interface{}) {
	if Tracking {
		fmt.Printf(format, args...)
	}
}

// TrackLogln prints a message with newline only if tracking debug mode is enabled
func TrackLogln(msg string) {
	if Tracking {
		fmt.Println(msg)
	}
}
