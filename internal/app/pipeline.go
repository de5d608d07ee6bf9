package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gocv.io/x/gocv"

	"github.com/ayusman/motioncam/internal/capture"
	"github.com/ayusman/motioncam/internal/hook"
	"github.com/ayusman/motioncam/internal/motion"
	"github.com/ayusman/motioncam/internal/store"
	"github.com/ayusman/motioncam/internal/vision"
)

// Run opens the camera and processes frames until ctx is cancelled, ESC is
// pressed in the preview window, or the source is exhausted. The camera is
// closed before Run returns.
func (a *App) Run(ctx context.Context) error {
	cam := a.config.Camera
	if cam == nil || a.config.Detector == nil {
		return errors.New("app: camera and detector are required")
	}

	if err := cam.Open(); err != nil {
		return fmt.Errorf("open source %q: %w", a.config.Source, err)
	}
	cam.SetFPS(a.config.FPS)

	defer func() {
		if err := cam.Close(); err != nil {
			a.logger.Warnw("failed to close source", "error", err)
		}
		a.logger.Info("Application closed.")
	}()

	a.logger.Infow("watch loop started",
		"source", a.config.Source,
		"method", a.config.Method,
		"fps", a.config.FPS,
	)

	ticker := time.NewTicker(time.Second / time.Duration(a.config.FPS))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}

			frame, err := cam.ReadFrame()
			if err != nil {
				if errors.Is(err, capture.ErrEndOfStream) && a.config.ExitOnEOF {
					a.logger.Info("Failed to read next frame. Exiting loop.")
					return nil
				}
				a.logger.Warnw("failed to read frame", "error", err)
				continue
			}

			if _, err := a.ProcessFrame(frame); err != nil {
				a.logger.Warnw("failed to process frame", "error", err)
			}

			quit := a.config.Window != nil && a.config.Window.Show(*frame)
			frame.Close()

			if quit {
				a.logger.Info("User exited application.")
				return nil
			}
		}
	}
}

// ProcessFrame runs one iteration of the loop on frame. On motion, the
// frame is annotated in place and the event is recorded and dispatched.
// Every frame is pushed to the registered sinks.
func (a *App) ProcessFrame(frame *gocv.Mat) (motion.Detection, error) {
	det, err := a.config.Detector.Detect(frame)
	if err != nil {
		return det, err
	}

	if det.Result.Detected {
		vision.Annotate(frame, det.Qualifying())
		a.record(frame, det)
	}

	a.mu.RLock()
	sinks := a.sinks
	a.mu.RUnlock()
	for _, sink := range sinks {
		sink.WriteFrame(*frame)
	}

	return det, nil
}

// record saves a snapshot, persists the event and dispatches it.
func (a *App) record(frame *gocv.Mat, det motion.Detection) {
	now := a.now()
	r := *det.Result.Region

	ev := store.Event{
		ID:             uuid.New().String(),
		DetectedAt:     now,
		Source:         a.config.Source,
		Method:         a.config.Method,
		Region:         r,
		CandidateCount: det.Result.CandidateCount,
	}

	if a.config.Snapshots != nil && a.snapshotDue(now) {
		path, err := a.config.Snapshots.Save(*frame, now)
		if err != nil {
			a.logger.Warnw("failed to save snapshot", "error", err)
		} else {
			ev.Snapshot = path
			a.logger.Infof("Motion event saved: %s", path)
		}
	}

	a.logger.Infof("Motion detected at position: x=%d, y=%d, w=%d, h=%d", r.X, r.Y, r.Width, r.Height)

	if a.config.Store != nil {
		if err := a.config.Store.Events().Create(&ev); err != nil {
			a.logger.Warnw("failed to persist event", "id", ev.ID, "error", err)
		}
	}

	a.mu.Lock()
	a.lastEvent = &ev
	handlers := a.handlers
	a.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}

	a.dispatchHooks(ev)
}

// snapshotDue reports whether a snapshot may be taken at now and, if so,
// claims the slot.
func (a *App) snapshotDue(now time.Time) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return claim(&a.lastSnapshot, now, a.config.SnapshotInterval)
}

// hookDue reports whether hooks may be dispatched at now. At most one
// dispatch runs at a time; the caller must call hookDone once it finishes.
func (a *App) hookDue(now time.Time) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.hookBusy || !claim(&a.lastHook, now, a.config.HookInterval) {
		return false
	}
	a.hookBusy = true
	return true
}

func (a *App) hookDone() {
	a.mu.Lock()
	a.hookBusy = false
	a.mu.Unlock()
}

// claim sets *last to now unless the previous slot is younger than interval.
func claim(last *time.Time, now time.Time, interval time.Duration) bool {
	if !last.IsZero() && now.Sub(*last) < interval {
		return false
	}
	*last = now
	return true
}

// dispatchHooks runs the subscribed hooks for ev in the background and
// records their outcomes. Events arriving while a dispatch is running, or
// within HookInterval of the previous one, are not sent to hooks.
func (a *App) dispatchHooks(ev store.Event) {
	runner := a.config.Hooks
	if runner == nil || len(runner.Hooks(hook.EventMotion)) == 0 {
		return
	}
	if !a.hookDue(ev.DetectedAt) {
		a.logger.Debugw("hook dispatch skipped", "event", ev.ID)
		return
	}

	payload := &hook.Event{
		Event:      hook.EventMotion,
		ID:         ev.ID,
		DetectedAt: ev.DetectedAt,
		Source:     ev.Source,
		Method:     ev.Method,
		Motion:     ev.Region,
		Snapshot:   ev.Snapshot,
	}

	a.hooks.Add(1)
	go func() {
		defer a.hooks.Done()
		defer a.hookDone()

		for _, out := range runner.Run(context.Background(), payload) {
			run := store.HookRun{
				EventID:  ev.ID,
				HookName: out.Hook,
				Success:  out.Success,
				Duration: out.Duration,
			}
			if out.Err != nil {
				run.Error = out.Err.Error()
				a.logger.Warnw("hook failed", "hook", out.Hook, "event", ev.ID, "error", out.Err)
			} else {
				a.logger.Debugw("hook ran", "hook", out.Hook, "event", ev.ID, "duration", out.Duration)
			}

			if a.config.Store != nil {
				if err := a.config.Store.HookRuns().Create(&run); err != nil {
					a.logger.Warnw("failed to record hook run", "hook", out.Hook, "error", err)
				}
			}
		}
	}()
}
