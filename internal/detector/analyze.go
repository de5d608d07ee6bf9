package detector

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"

	"github.com/ayusman/motioncam/internal/motion"
	"github.com/ayusman/motioncam/internal/vision"
)

var (
	// ErrUnknownMethod is returned for a method other than the two supported ones.
	ErrUnknownMethod = errors.New("Unknown method. Use: background_subtraction or frame_difference")

	// ErrNeedTwoFrames is returned when frame_difference gets fewer than two frames.
	ErrNeedTwoFrames = errors.New("Frame difference requires two frames")

	// ErrNoFrame is returned when a request carries no frame at all.
	ErrNoFrame = errors.New("no frame supplied")
)

// Request is a single stateless detection over base64-encoded frames.
type Request struct {
	Method string   `json:"method"`
	Frames []string `json:"frames"`
}

// Options tunes a one-shot request.
type Options struct {
	MinArea   float64
	Threshold float64
}

// DefaultOptions returns the one-shot defaults: threshold 15, minimum area 50.
func DefaultOptions() Options {
	return Options{
		MinArea:   50,
		Threshold: 15,
	}
}

// Analyze runs one request from scratch. Every failure, including bad input,
// is reported as the error variant of the result; Analyze never panics on
// malformed frames.
func Analyze(req Request, opts Options) motion.Result {
	if err := motion.ValidateMinArea(opts.MinArea); err != nil {
		return motion.Failure(err)
	}

	var need int
	switch req.Method {
	case MethodBackgroundSubtraction:
		need = 1
	case MethodFrameDifference:
		need = 2
	default:
		return motion.Failure(ErrUnknownMethod)
	}
	if len(req.Frames) < need {
		if need == 2 {
			return motion.Failure(ErrNeedTwoFrames)
		}
		return motion.Failure(ErrNoFrame)
	}

	frames := make([]gocv.Mat, 0, need)
	defer func() {
		for _, f := range frames {
			f.Close()
		}
	}()
	for i, data := range req.Frames[:need] {
		frame, err := vision.DecodeBase64(data)
		if err != nil {
			frame.Close()
			if need > 1 {
				err = fmt.Errorf("frame %d: %w", i+1, err)
			}
			return motion.Failure(err)
		}
		frames = append(frames, frame)
	}

	return AnalyzeMats(req.Method, frames, opts)
}

// AnalyzeMats is Analyze for frames that are already decoded. Background
// subtraction feeds the first frame to a fresh MOG2 model with shadow
// detection and uses the raw foreground mask; frame difference thresholds the
// grayscale difference of the first two frames.
func AnalyzeMats(method string, frames []gocv.Mat, opts Options) motion.Result {
	if err := motion.ValidateMinArea(opts.MinArea); err != nil {
		return motion.Failure(err)
	}

	switch method {
	case MethodBackgroundSubtraction:
		if len(frames) < 1 || frames[0].Empty() {
			return motion.Failure(ErrNoFrame)
		}
		d := NewBackgroundDetector(Config{MinArea: opts.MinArea, DetectShadows: true})
		defer d.Close()
		det, err := d.Detect(&frames[0])
		if err != nil {
			return motion.Failure(err)
		}
		return det.Result
	case MethodFrameDifference:
		if len(frames) < 2 {
			return motion.Failure(ErrNeedTwoFrames)
		}
		if frames[0].Empty() || frames[1].Empty() {
			return motion.Failure(ErrEmptyFrame)
		}
		mask, err := vision.Difference(frames[0], frames[1], float32(opts.Threshold))
		defer mask.Close()
		if err != nil {
			return motion.Failure(err)
		}
		return motion.Select(vision.Candidates(mask), opts.MinArea)
	default:
		return motion.Failure(ErrUnknownMethod)
	}
}
