package vision

import "gocv.io/x/gocv"

// MOG2 defaults, matching OpenCV's createBackgroundSubtractorMOG2.
const (
	DefaultHistory      = 500
	DefaultVarThreshold = 16
)

// Subtractor maintains a mixture-of-Gaussians background model.
type Subtractor struct {
	mog2 gocv.BackgroundSubtractorMOG2
}

// NewSubtractor creates a MOG2 background subtractor. With detectShadows,
// shadow pixels are marked gray (127) in the mask instead of white.
func NewSubtractor(detectShadows bool) *Subtractor {
	return &Subtractor{
		mog2: gocv.NewBackgroundSubtractorMOG2WithParams(DefaultHistory, DefaultVarThreshold, detectShadows),
	}
}

// Apply updates the model with frame and returns its foreground mask.
// The caller is responsible for closing the returned Mat.
func (s *Subtractor) Apply(frame gocv.Mat) gocv.Mat {
	mask := gocv.NewMat()
	s.mog2.Apply(frame, &mask)
	return mask
}

// Close releases the background model.
func (s *Subtractor) Close() error {
	return s.mog2.Close()
}
