package detector

import (
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/motioncam/internal/motion"
	"github.com/ayusman/motioncam/internal/vision"
)

// DiffDetector detects motion between consecutive video frames
// using frame differencing with Gaussian blur for noise reduction.
type DiffDetector struct {
	config      Config
	prevGray    gocv.Mat
	initialized bool
	mu          sync.Mutex
}

// NewDiffDetector creates a frame-differencing detector.
func NewDiffDetector(cfg Config) *DiffDetector {
	return &DiffDetector{
		config:      cfg,
		prevGray:    gocv.NewMat(),
		initialized: false,
	}
}

// Detect analyzes a frame for motion compared to the previous frame.
//
// Algorithm:
// 1. Convert frame to grayscale and apply the configured Gaussian blur
// 2. If first frame, store as baseline and report no motion
// 3. Threshold the absolute difference with the previous frame
// 4. Dilate the mask
// 5. External contours -> candidates -> largest above MinArea
// 6. The current frame becomes the new baseline
func (d *DiffDetector) Detect(frame *gocv.Mat) (motion.Detection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if frame == nil || frame.Empty() {
		return motion.Detection{}, ErrEmptyFrame
	}

	gray := vision.Preprocess(*frame, d.config.BlurSize)
	defer gray.Close()

	// If first frame, store as baseline
	if !d.initialized {
		gray.CopyTo(&d.prevGray)
		d.initialized = true
		return motion.Detect(nil, d.config.MinArea), nil
	}

	mask, err := vision.Difference(d.prevGray, gray, float32(d.config.Threshold))
	defer mask.Close()

	// The current frame becomes the baseline even when the size changed.
	gray.CopyTo(&d.prevGray)
	if err != nil {
		return motion.Detect(nil, d.config.MinArea), err
	}

	vision.Dilate(&mask, d.config.DilateIterations)

	return motion.Detect(vision.Candidates(mask), d.config.MinArea), nil
}

// Reset clears the detector state, allowing it to be reused
// with a new baseline frame.
func (d *DiffDetector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.clear()
}

// Close releases resources used by the detector.
func (d *DiffDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.clear()
	return nil
}

func (d *DiffDetector) clear() {
	if !d.prevGray.Empty() {
		d.prevGray.Close()
		d.prevGray = gocv.NewMat()
	}
	d.initialized = false
}

// SetThreshold sets the binary threshold applied to the frame difference.
// Values outside (0, 255] are ignored.
func (d *DiffDetector) SetThreshold(threshold float64) {
	if threshold <= 0 || threshold > 255 {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.config.Threshold = threshold
}
