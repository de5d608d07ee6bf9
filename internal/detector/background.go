package detector

import (
	"errors"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/motioncam/internal/motion"
	"github.com/ayusman/motioncam/internal/vision"
)

// ErrEmptyFrame is returned when a detector receives a nil or empty frame.
var ErrEmptyFrame = errors.New("frame is empty")

// BackgroundDetector detects motion against a MOG2 background model that
// adapts over successive frames.
type BackgroundDetector struct {
	config     Config
	subtractor *vision.Subtractor
	mu         sync.Mutex
}

// NewBackgroundDetector creates a background-subtraction detector.
func NewBackgroundDetector(cfg Config) *BackgroundDetector {
	return &BackgroundDetector{
		config:     cfg,
		subtractor: vision.NewSubtractor(cfg.DetectShadows),
	}
}

// Detect updates the background model with frame and reports the largest
// foreground region.
//
// Pipeline:
// 1. Optional grayscale + Gaussian blur
// 2. MOG2 foreground mask
// 3. Optional binary threshold (drops MOG2 shadow pixels below it)
// 4. Optional dilation
// 5. External contours -> candidates -> largest above MinArea
func (d *BackgroundDetector) Detect(frame *gocv.Mat) (motion.Detection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if frame == nil || frame.Empty() {
		return motion.Detection{}, ErrEmptyFrame
	}
	if d.subtractor == nil {
		d.subtractor = vision.NewSubtractor(d.config.DetectShadows)
	}

	input := *frame
	if d.config.BlurSize > 0 {
		pre := vision.Preprocess(*frame, d.config.BlurSize)
		defer pre.Close()
		input = pre
	}

	mask := d.subtractor.Apply(input)
	defer mask.Close()

	if d.config.Threshold > 0 {
		thresh := vision.Threshold(mask, float32(d.config.Threshold))
		mask.Close()
		mask = thresh
	}

	vision.Dilate(&mask, d.config.DilateIterations)

	return motion.Detect(vision.Candidates(mask), d.config.MinArea), nil
}

// Close releases the background model. A closed detector starts a fresh
// model on its next Detect.
func (d *BackgroundDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.subtractor == nil {
		return nil
	}
	err := d.subtractor.Close()
	d.subtractor = nil
	return err
}
