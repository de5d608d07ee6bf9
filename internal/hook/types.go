// Package hook runs external executables when motion is detected.
package hook

import (
	"encoding/json"
	"time"

	"github.com/ayusman/motioncam/internal/motion"
)

// EventMotion is the only event delivered to hooks today.
const EventMotion = "motion"

// ManifestFile is the manifest name looked up in each hook directory.
const ManifestFile = "hook.json"

// Manifest describes a hook's metadata and the events it subscribes to.
type Manifest struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Executable  string   `json:"executable"`
	Events      []string `json:"events"`
}

// Event is the JSON document written to a hook's stdin.
type Event struct {
	Event      string        `json:"event"`
	ID         string        `json:"id"`
	DetectedAt time.Time     `json:"detected_at"`
	Source     string        `json:"source"`
	Method     string        `json:"method"`
	Motion     motion.Region `json:"motion"`
	Snapshot   string        `json:"snapshot,omitempty"`
}

// Response represents the JSON a hook prints on stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Hook represents a discovered hook with its manifest and location.
type Hook struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Handles reports whether the hook subscribes to event. A manifest without
// events subscribes to all of them.
func (h *Hook) Handles(event string) bool {
	if len(h.Manifest.Events) == 0 {
		return true
	}
	for _, e := range h.Manifest.Events {
		if e == event {
			return true
		}
	}
	return false
}
