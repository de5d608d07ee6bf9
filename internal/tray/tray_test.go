package tray

import (
	"testing"
	"time"

	"github.com/ayusman/motioncam/internal/motion"
	"github.com/ayusman/motioncam/internal/store"
)

func TestToggleTitle(t *testing.T) {
	if got := ToggleTitle(true); got != TitleEnabled {
		t.Errorf("ToggleTitle(true) = %q", got)
	}
	if got := ToggleTitle(false); got != TitleDisabled {
		t.Errorf("ToggleTitle(false) = %q", got)
	}
}

func TestLastEventLabel(t *testing.T) {
	if got := LastEventLabel(nil); got != LastNone {
		t.Errorf("LastEventLabel(nil) = %q, want %q", got, LastNone)
	}

	at := time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local)
	ev := &store.Event{DetectedAt: at, Region: motion.Region{Width: 40, Height: 20}}
	if got, want := LastEventLabel(ev), "Last: 14:05:07 (40x20)"; got != want {
		t.Errorf("LastEventLabel() = %q, want %q", got, want)
	}
}

func TestTray_Toggle(t *testing.T) {
	tr := New(true)

	var got []bool
	tr.OnToggle(func(enabled bool) { got = append(got, enabled) })

	tr.handleToggle()
	tr.handleToggle()

	if len(got) != 2 || got[0] != false || got[1] != true {
		t.Errorf("toggle callbacks = %v, want [false true]", got)
	}
	if !tr.IsEnabled() {
		t.Error("expected enabled after two toggles")
	}
}

func TestTray_SetEnabled(t *testing.T) {
	tr := New(true)

	called := false
	tr.OnToggle(func(bool) { called = true })

	tr.SetEnabled(false)
	if tr.IsEnabled() {
		t.Error("expected disabled")
	}
	if called {
		t.Error("SetEnabled should not fire the toggle callback")
	}
}

func TestTray_SetLastEvent(t *testing.T) {
	tr := New(false)
	if tr.LastLabel() != LastNone {
		t.Errorf("initial label = %q", tr.LastLabel())
	}

	tr.SetLastEvent(&store.Event{DetectedAt: time.Now(), Region: motion.Region{Width: 3, Height: 4}})
	if tr.LastLabel() == LastNone {
		t.Error("expected label to change")
	}

	tr.SetLastEvent(nil)
	if tr.LastLabel() != LastNone {
		t.Errorf("label after nil = %q", tr.LastLabel())
	}
}

func TestTray_Dashboard(t *testing.T) {
	tr := New(true)

	opened := false
	tr.OnDashboard(func() { opened = true })
	tr.handleDashboard()

	if !opened {
		t.Error("expected dashboard callback")
	}
}
