// Package detector turns video frames into motion detections.
package detector

import (
	"gocv.io/x/gocv"

	"github.com/ayusman/motioncam/internal/motion"
)

// Detector defines the interface for per-frame motion detection.
type Detector interface {
	// Detect analyzes a video frame and returns the selected motion region
	// together with every candidate it was chosen from.
	Detect(frame *gocv.Mat) (motion.Detection, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Method names accepted by New and Analyze.
const (
	MethodBackgroundSubtraction = "background_subtraction"
	MethodFrameDifference       = "frame_difference"
)

// Config holds configuration options for motion detection.
type Config struct {
	// Method is MethodBackgroundSubtraction or MethodFrameDifference.
	Method string

	// MinArea is the contour area a candidate must exceed to count as motion.
	MinArea float64

	// Threshold is the binary threshold applied to the difference or
	// foreground mask (0-255).
	Threshold float64

	// BlurSize is the Gaussian kernel applied before detection. 0 disables it.
	BlurSize int

	// DilateIterations grows the mask before contours are extracted.
	DilateIterations int

	// DetectShadows enables MOG2 shadow marking.
	DetectShadows bool
}

// DefaultConfig returns the high-sensitivity settings used by the watch loop.
func DefaultConfig() Config {
	return Config{
		Method:           MethodBackgroundSubtraction,
		MinArea:          10,
		Threshold:        10,
		BlurSize:         5,
		DilateIterations: 2,
		DetectShadows:    false,
	}
}

// New creates the detector named by cfg.Method.
func New(cfg Config) (Detector, error) {
	if err := motion.ValidateMinArea(cfg.MinArea); err != nil {
		return nil, err
	}

	switch cfg.Method {
	case MethodBackgroundSubtraction, "":
		return NewBackgroundDetector(cfg), nil
	case MethodFrameDifference:
		return NewDiffDetector(cfg), nil
	default:
		return nil, ErrUnknownMethod
	}
}
