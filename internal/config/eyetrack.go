// Package config provides configuration helpers for go-eyetrack commands.
package config

import (
	"os"
	"strconv"
)

// Default daemon configuration.
const (
	DefaultListenAddr = ":8420"
	DefaultBackend    = "auto"
	DefaultVariant    = "n"
)

// ModelDir returns the model directory from EYETRACK_MODEL_DIR env var.
// Empty means the engine resolves its own search paths.
func ModelDir() string {
	return os.Getenv("EYETRACK_MODEL_DIR")
}

// Backend returns the detector backend from EYETRACK_BACKEND env var.
// Falls back to "auto" if not set.
func Backend() string {
	if b := os.Getenv("EYETRACK_BACKEND"); b != "" {
		return b
	}
	return DefaultBackend
}

// YOLOVariant returns the YOLO model variant tag from EYETRACK_YOLO_VARIANT.
// Falls back to "n" (nano) if not set.
func YOLOVariant() string {
	if v := os.Getenv("EYETRACK_YOLO_VARIANT"); v != "" {
		return v
	}
	return DefaultVariant
}

// FocalLength returns the camera focal length in pixels from
// EYETRACK_FOCAL_LENGTH. Falls back to the provided default if not set
// or unparsable.
func FocalLength(def float64) float64 {
	if s := os.Getenv("EYETRACK_FOCAL_LENGTH"); s != "" {
		if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
			return f
		}
	}
	return def
}

// ListenAddr returns the daemon listen address from EYETRACK_LISTEN.
// Falls back to the default if not set.
func ListenAddr() string {
	if a := os.Getenv("EYETRACK_LISTEN"); a != "" {
		return a
	}
	return DefaultListenAddr
}
