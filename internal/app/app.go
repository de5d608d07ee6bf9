// Package app runs the motion watch loop: it reads frames, detects motion,
// and fans each detection out to snapshots, the event store, subscribers and
// hooks.
package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/ayusman/motioncam/internal/capture"
	"github.com/ayusman/motioncam/internal/detector"
	"github.com/ayusman/motioncam/internal/hook"
	"github.com/ayusman/motioncam/internal/recorder"
	"github.com/ayusman/motioncam/internal/store"
)

// DefaultSnapshotInterval is the minimum gap between two saved snapshots.
const DefaultSnapshotInterval = time.Second

// DefaultHookInterval is the minimum gap between two hook dispatches.
const DefaultHookInterval = 5 * time.Second

// ErrAlreadyRunning is returned by Start when the loop is already running.
var ErrAlreadyRunning = errors.New("watch loop already running")

// FrameSink receives every processed frame, annotated when motion was found.
type FrameSink interface {
	WriteFrame(frame gocv.Mat)
}

// EventHandler is called with every persisted motion event.
type EventHandler func(ev store.Event)

// Config holds the collaborators and options of an App. Camera and Detector
// are required; everything else is optional.
type Config struct {
	Camera    capture.Camera
	Detector  detector.Detector
	Snapshots recorder.SnapshotWriter
	Store     *store.Store
	Hooks     *hook.Runner
	Logger    *zap.SugaredLogger
	Window    *Window

	// Source and Method label persisted events.
	Source string
	Method string

	FPS              int
	SnapshotInterval time.Duration
	HookInterval     time.Duration
	ExitOnEOF        bool
}

// App is the motion watch loop.
type App struct {
	config Config
	logger *zap.SugaredLogger

	mu           sync.RWMutex
	enabled      bool
	sinks        []FrameSink
	handlers     []EventHandler
	lastEvent    *store.Event
	lastSnapshot time.Time
	lastHook     time.Time
	hookBusy     bool
	cancel       context.CancelFunc
	done         chan struct{}

	hooks sync.WaitGroup
	now   func() time.Time
}

// New creates an App. Detection starts enabled unless the store says
// otherwise.
func New(config Config) *App {
	if config.FPS <= 0 {
		config.FPS = capture.DefaultFPS
	}
	if config.SnapshotInterval <= 0 {
		config.SnapshotInterval = DefaultSnapshotInterval
	}
	if config.HookInterval <= 0 {
		config.HookInterval = DefaultHookInterval
	}
	if config.Method == "" {
		config.Method = detector.MethodBackgroundSubtraction
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	a := &App{
		config:  config,
		logger:  logger,
		enabled: true,
		now:     time.Now,
	}

	if config.Store != nil {
		enabled, err := config.Store.Settings().GetBool(store.SettingEnabled, true)
		if err != nil {
			logger.Warnw("failed to load enabled setting", "error", err)
		}
		a.enabled = enabled

		if last, err := config.Store.Events().Latest(); err == nil {
			a.lastEvent = last
		}
	}

	return a
}

// SetEnabled turns detection on or off and persists the choice.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	a.enabled = enabled
	a.mu.Unlock()

	if a.config.Store != nil {
		if err := a.config.Store.Settings().SetBool(store.SettingEnabled, enabled); err != nil {
			a.logger.Warnw("failed to save enabled setting", "error", err)
		}
	}
	a.logger.Infow("detection toggled", "enabled", enabled)
}

// IsEnabled returns whether detection is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// AddSink registers a sink for processed frames.
func (a *App) AddSink(sink FrameSink) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sinks = append(a.sinks, sink)
}

// OnEvent registers a handler for new motion events.
func (a *App) OnEvent(h EventHandler) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.handlers = append(a.handlers, h)
}

// LastEvent returns the most recent motion event, or nil.
func (a *App) LastEvent() *store.Event {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.lastEvent == nil {
		return nil
	}
	ev := *a.lastEvent
	return &ev
}

// Camera returns the frame source.
func (a *App) Camera() capture.Camera {
	return a.config.Camera
}

// Detector returns the motion detector.
func (a *App) Detector() detector.Detector {
	return a.config.Detector
}

// Start runs the loop in a background goroutine until Stop is called or the
// source is exhausted.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cancel != nil {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.done = make(chan struct{})

	go func(done chan struct{}) {
		defer close(done)
		if err := a.Run(ctx); err != nil {
			a.logger.Errorw("watch loop failed", "error", err)
		}
	}(a.done)

	return nil
}

// Stop halts a loop started with Start and waits for it to return.
func (a *App) Stop() {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.cancel, a.done = nil, nil
	a.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Done is closed when a loop started with Start returns.
func (a *App) Done() <-chan struct{} {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.done
}

// Wait blocks until every dispatched hook has finished.
func (a *App) Wait() {
	a.hooks.Wait()
}

// Close waits for pending hooks and releases the camera, the detector and
// the preview window.
func (a *App) Close() error {
	a.Stop()
	a.hooks.Wait()

	var err error
	if a.config.Camera != nil {
		err = multierr.Append(err, a.config.Camera.Close())
	}
	if a.config.Detector != nil {
		err = multierr.Append(err, a.config.Detector.Close())
	}
	if a.config.Window != nil {
		err = multierr.Append(err, a.config.Window.Close())
	}
	return err
}
