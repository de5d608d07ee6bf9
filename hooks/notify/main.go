// Package main provides a desktop notification hook.
// It shows where motion was detected via osascript on macOS and notify-send
// elsewhere.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"time"
)

// Event represents the input from the hook executor.
type Event struct {
	Event      string    `json:"event"`
	ID         string    `json:"id"`
	DetectedAt time.Time `json:"detected_at"`
	Source     string    `json:"source"`
	Method     string    `json:"method"`
	Motion     struct {
		X      int     `json:"x"`
		Y      int     `json:"y"`
		Width  int     `json:"width"`
		Height int     `json:"height"`
		Area   float64 `json:"area"`
	} `json:"motion"`
	Snapshot string `json:"snapshot,omitempty"`
}

// Response represents the output to the hook executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func main() {
	var ev Event
	if err := json.NewDecoder(os.Stdin).Decode(&ev); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode event: %v", err))
		return
	}

	if ev.Event != "motion" {
		writeErrorResponse(fmt.Sprintf("unsupported event: %s", ev.Event))
		return
	}

	m := ev.Motion
	body := fmt.Sprintf("Motion detected at position: x=%d, y=%d, w=%d, h=%d", m.X, m.Y, m.Width, m.Height)
	if err := notify("Motion Detected", body); err != nil {
		writeErrorResponse(fmt.Sprintf("notify failed: %v", err))
		return
	}

	writeSuccessResponse(body)
}

// notify shows a desktop notification.
func notify(title, body string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		script := fmt.Sprintf("display notification %q with title %q", body, title)
		cmd = exec.Command("osascript", "-e", script)
	default:
		cmd = exec.Command("notify-send", title, body)
	}

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}

// writeErrorResponse writes an error response to stdout.
func writeErrorResponse(errMsg string) {
	resp := Response{
		Success: false,
		Error:   errMsg,
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

// writeSuccessResponse writes a success response to stdout.
func writeSuccessResponse(message string) {
	data, _ := json.Marshal(map[string]string{"message": message})
	resp := Response{
		Success: true,
		Data:    data,
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}
