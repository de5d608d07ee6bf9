package hook

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// writeHook creates <dir>/<name> with a hook.json manifest and an executable
// shell script as its entry point.
func writeHook(t *testing.T, dir, name, script string, events []string) string {
	t.Helper()

	hookDir := filepath.Join(dir, name)
	if err := os.MkdirAll(hookDir, 0755); err != nil {
		t.Fatalf("failed to create hook dir: %v", err)
	}

	manifest := Manifest{
		Name:        name,
		Version:     "1.0.0",
		Description: "test hook " + name,
		Executable:  "run.sh",
		Events:      events,
	}
	manifestBytes, err := json.Marshal(manifest)
	if err != nil {
		t.Fatalf("failed to marshal manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(hookDir, ManifestFile), manifestBytes, 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	if err := os.WriteFile(filepath.Join(hookDir, "run.sh"), []byte(script), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}

	return hookDir
}

func TestManager_Discover(t *testing.T) {
	tmpDir := t.TempDir()
	hookDir := writeHook(t, tmpDir, "notify", "#!/bin/sh\n", []string{EventMotion})

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	hooks := manager.List()
	if len(hooks) != 1 {
		t.Fatalf("expected 1 hook, got %d", len(hooks))
	}

	h := hooks[0]
	if h.Manifest.Name != "notify" {
		t.Errorf("expected hook name 'notify', got %q", h.Manifest.Name)
	}
	if h.Manifest.Version != "1.0.0" {
		t.Errorf("expected version '1.0.0', got %q", h.Manifest.Version)
	}
	if h.Path != hookDir {
		t.Errorf("expected path %q, got %q", hookDir, h.Path)
	}
	if h.Executable != filepath.Join(hookDir, "run.sh") {
		t.Errorf("expected executable in hook dir, got %q", h.Executable)
	}
}

func TestManager_Discover_MultipleHooksSorted(t *testing.T) {
	tmpDir := t.TempDir()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		writeHook(t, tmpDir, name, "#!/bin/sh\n", nil)
	}

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	hooks := manager.List()
	if len(hooks) != 3 {
		t.Fatalf("expected 3 hooks, got %d", len(hooks))
	}
	want := []string{"alpha", "mid", "zeta"}
	for i, h := range hooks {
		if h.Manifest.Name != want[i] {
			t.Errorf("hooks[%d] = %q, want %q", i, h.Manifest.Name, want[i])
		}
	}
}

func TestManager_For(t *testing.T) {
	tmpDir := t.TempDir()
	writeHook(t, tmpDir, "all-events", "#!/bin/sh\n", nil)
	writeHook(t, tmpDir, "motion-only", "#!/bin/sh\n", []string{EventMotion})
	writeHook(t, tmpDir, "other", "#!/bin/sh\n", []string{"startup"})

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	hooks := manager.For(EventMotion)
	if len(hooks) != 2 {
		t.Fatalf("expected 2 motion hooks, got %d", len(hooks))
	}
	if hooks[0].Manifest.Name != "all-events" || hooks[1].Manifest.Name != "motion-only" {
		t.Errorf("unexpected hooks: %q, %q", hooks[0].Manifest.Name, hooks[1].Manifest.Name)
	}
}

func TestManager_Get(t *testing.T) {
	tmpDir := t.TempDir()
	writeHook(t, tmpDir, "notify", "#!/bin/sh\n", nil)

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	h, err := manager.Get("notify")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if h.Manifest.Name != "notify" {
		t.Errorf("Get() returned %q", h.Manifest.Name)
	}

	if _, err := manager.Get("missing"); err != ErrHookNotFound {
		t.Errorf("expected ErrHookNotFound, got %v", err)
	}
}

func TestManager_HookDir(t *testing.T) {
	hookDir := "/path/to/hooks"
	manager := NewManager(hookDir)

	if manager.HookDir() != hookDir {
		t.Errorf("expected hook dir %q, got %q", hookDir, manager.HookDir())
	}
}

func TestManager_Discover_SkipsInvalid(t *testing.T) {
	tmpDir := t.TempDir()

	badJSON := filepath.Join(tmpDir, "bad-json")
	if err := os.MkdirAll(badJSON, 0755); err != nil {
		t.Fatalf("failed to create hook dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(badJSON, ManifestFile), []byte("not valid json"), 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	noExec := filepath.Join(tmpDir, "no-exec")
	if err := os.MkdirAll(noExec, 0755); err != nil {
		t.Fatalf("failed to create hook dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(noExec, ManifestFile), []byte(`{"name":"no-exec"}`), 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	// Stray files next to hook directories are ignored.
	if err := os.WriteFile(filepath.Join(tmpDir, "README"), []byte("hooks"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed unexpectedly: %v", err)
	}

	if hooks := manager.List(); len(hooks) != 0 {
		t.Fatalf("expected 0 hooks, got %d", len(hooks))
	}
}

func TestManager_Discover_NonExistentDir(t *testing.T) {
	for _, dir := range []string{"/path/that/does/not/exist", ""} {
		manager := NewManager(dir)

		if err := manager.Discover(); err != nil {
			t.Fatalf("Discover(%q) failed: %v", dir, err)
		}
		if hooks := manager.List(); len(hooks) != 0 {
			t.Fatalf("expected 0 hooks, got %d", len(hooks))
		}
	}
}
