package hook

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestHook_Notify_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	hookDir := findHookDir("notify")
	if hookDir == "" {
		t.Skip("notify hook not found")
	}
	if _, err := os.Stat(filepath.Join(hookDir, "notify")); err != nil {
		t.Skip("notify hook not built")
	}

	mgr := NewManager(filepath.Dir(hookDir))
	if err := mgr.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	h, err := mgr.Get("notify")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !h.Handles(EventMotion) {
		t.Error("notify hook should subscribe to motion events")
	}

	// An unsupported event exercises the protocol without showing a
	// notification.
	ev := testEvent()
	ev.Event = "startup"

	resp, err := NewExecutor(5*time.Second).Execute(context.Background(), h, ev)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if resp.Success {
		t.Error("expected failure for unsupported event")
	}
}

func findHookDir(name string) string {
	candidates := []string{
		filepath.Join("../../hooks", name),
		filepath.Join("../../../hooks", name),
	}

	for _, dir := range candidates {
		if _, err := os.Stat(filepath.Join(dir, ManifestFile)); err == nil {
			return dir
		}
	}
	return ""
}
