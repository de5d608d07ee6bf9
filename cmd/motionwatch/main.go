// Command motionwatch watches a camera or video file for motion, saves
// snapshots and events, and serves them over HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/ayusman/motioncam/internal/app"
	"github.com/ayusman/motioncam/internal/capture"
	"github.com/ayusman/motioncam/internal/config"
	"github.com/ayusman/motioncam/internal/detector"
	"github.com/ayusman/motioncam/internal/hook"
	"github.com/ayusman/motioncam/internal/logging"
	"github.com/ayusman/motioncam/internal/recorder"
	"github.com/ayusman/motioncam/internal/server"
	"github.com/ayusman/motioncam/internal/store"
	"github.com/ayusman/motioncam/internal/tray"
)

const (
	flagConfig   = "config"
	flagSource   = "source"
	flagMethod   = "method"
	flagMinArea  = "min-area"
	flagAddr     = "addr"
	flagWeb      = "web"
	flagWindow   = "window"
	flagTray     = "tray"
	flagNoServer = "no-server"
	flagDebug    = "debug"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		code := 1
		if exit, ok := err.(cli.ExitCoder); ok {
			code = exit.ExitCode()
		}
		os.Exit(code)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "motionwatch",
		Usage: "watch a camera for motion",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE`",
			},
			&cli.StringFlag{
				Name:  flagSource,
				Usage: "camera index, video file or stream URL",
			},
			&cli.StringFlag{
				Name:  flagMethod,
				Usage: "background_subtraction or frame_difference",
			},
			&cli.Float64Flag{
				Name:  flagMinArea,
				Usage: "ignore regions with an area at or below `PIXELS`",
			},
			&cli.StringFlag{
				Name:  flagAddr,
				Usage: "HTTP listen address",
			},
			&cli.StringFlag{
				Name:  flagWeb,
				Usage: "serve a dashboard from `DIR`",
			},
			&cli.BoolFlag{
				Name:  flagWindow,
				Usage: "show a preview window, ESC quits",
			},
			&cli.BoolFlag{
				Name:  flagTray,
				Usage: "show a system tray toggle",
			},
			&cli.BoolFlag{
				Name:  flagNoServer,
				Usage: "do not start the HTTP server",
			},
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		HideHelpCommand: true,
		Action:          watch,
		ExitErrHandler:  func(*cli.Context, error) {},
	}
}

// loadConfig reads the configuration and applies command line overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String(flagConfig))
	if err != nil {
		return nil, err
	}

	if c.IsSet(flagSource) {
		cfg.Source = c.String(flagSource)
	}
	if c.IsSet(flagMethod) {
		cfg.Detection.Method = c.String(flagMethod)
	}
	if c.IsSet(flagMinArea) {
		cfg.Detection.MinArea = c.Float64(flagMinArea)
	}
	if c.IsSet(flagAddr) {
		cfg.Addr = c.String(flagAddr)
	}
	if c.Bool(flagDebug) {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func watch(c *cli.Context) (err error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	logger, logCloser, err := logging.New(cfg.LoggingOptions())
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer func() { err = multierr.Append(err, logCloser.Close()) }()

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	st, err := store.New(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { err = multierr.Append(err, st.Close()) }()

	det, err := detector.New(cfg.DetectorConfig())
	if err != nil {
		return err
	}

	snapshots, err := recorder.NewFileWriter(cfg.RecordingsDir)
	if err != nil {
		return err
	}

	manager := hook.NewManager(cfg.HooksDir)
	if err := manager.Discover(); err != nil {
		logger.Warnw("hook discovery failed", "dir", cfg.HooksDir, "error", err)
	}
	logger.Infow("hooks loaded", "count", len(manager.List()))

	useTray := c.Bool(flagTray)
	var window *app.Window
	if c.Bool(flagWindow) {
		if useTray {
			logger.Warn("preview window is not available together with the tray")
		} else {
			window = app.NewWindow()
		}
	}

	watcher := app.New(app.Config{
		Camera:           capture.NewCamera(cfg.Source),
		Detector:         det,
		Snapshots:        snapshots,
		Store:            st,
		Hooks:            hook.NewRunner(manager, hook.NewExecutor(cfg.HookTimeout)),
		Logger:           logger,
		Window:           window,
		Source:           cfg.Source,
		Method:           cfg.Detection.Method,
		FPS:              cfg.FPS,
		SnapshotInterval: cfg.SnapshotInterval,
		HookInterval:     cfg.HookInterval,
		ExitOnEOF:        cfg.ExitOnEOF,
	})
	defer func() { err = multierr.Append(err, watcher.Close()) }()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverDone := make(chan error, 1)
	if c.Bool(flagNoServer) {
		close(serverDone)
	} else {
		stream := server.NewStream()
		hub := server.NewHub(logger)
		watcher.AddSink(stream)
		watcher.OnEvent(hub.Broadcast)

		srv := server.New(server.Config{
			StaticDir: webDir(c.String(flagWeb)),
			Store:     st,
			Stream:    stream,
			Hub:       hub,
			Toggle:    watcher,
			Logger:    logger,
		})
		go func() {
			err := srv.Run(ctx, cfg.Addr)
			if err != nil {
				logger.Errorw("http server failed", "error", err)
				stop()
			}
			serverDone <- err
		}()
	}

	if useTray {
		err = runTray(ctx, stop, watcher, dashboardURL(cfg.Addr), logger)
	} else {
		err = watcher.Run(ctx)
	}

	stop()
	return multierr.Append(err, <-serverDone)
}

// runTray runs the watch loop in the background and the tray on the main
// goroutine until either stops.
func runTray(ctx context.Context, stop context.CancelFunc, watcher *app.App, url string, logger *zap.SugaredLogger) error {
	t := tray.New(watcher.IsEnabled())
	t.SetLastEvent(watcher.LastEvent())
	t.OnToggle(watcher.SetEnabled)
	t.OnDashboard(func() {
		if err := openBrowser(url); err != nil {
			logger.Warnw("failed to open dashboard", "url", url, "error", err)
		}
	})
	t.OnQuit(stop)
	watcher.OnEvent(func(ev store.Event) { t.SetLastEvent(&ev) })

	if err := watcher.Start(ctx); err != nil {
		return err
	}

	go func() {
		select {
		case <-ctx.Done():
		case <-watcher.Done():
		}
		t.Quit()
	}()

	t.Run()
	watcher.Stop()
	return nil
}

// dashboardURL turns a listen address into a local URL.
func dashboardURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}

// webDir returns dir when set, otherwise the first dashboard directory found
// in "web", "../web" or ~/.motioncam/web.
func webDir(dir string) string {
	if dir != "" {
		return dir
	}

	for _, p := range []string{"web", "../web"} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	homeWebDir := filepath.Join(homeDir, ".motioncam", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}
	return ""
}
