package app

import "gocv.io/x/gocv"

const (
	// WindowTitle is the title of the preview window.
	WindowTitle = "Motion Detector"

	// keyEscape is the key code that closes the preview.
	keyEscape = 27
)

// Window is an optional on-screen preview. It must be created and shown
// from the main goroutine.
type Window struct {
	win   *gocv.Window
	delay int
}

// NewWindow opens the preview window.
func NewWindow() *Window {
	return &Window{
		win:   gocv.NewWindow(WindowTitle),
		delay: 1,
	}
}

// Show draws frame and reports whether ESC was pressed.
func (w *Window) Show(frame gocv.Mat) bool {
	if w == nil || w.win == nil || frame.Empty() {
		return false
	}
	w.win.IMShow(frame)
	return w.win.WaitKey(w.delay) == keyEscape
}

// Close destroys the window.
func (w *Window) Close() error {
	if w == nil || w.win == nil {
		return nil
	}
	err := w.win.Close()
	w.win = nil
	return err
}
