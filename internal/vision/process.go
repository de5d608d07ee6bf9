package vision

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// ErrSizeMismatch is returned when two frames to compare differ in size.
var ErrSizeMismatch = errors.New("frames must have the same size")

// Grayscale converts a frame to a single channel. Frames that are already
// single channel are copied.
// The caller is responsible for closing the returned Mat.
func Grayscale(frame gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	if frame.Channels() > 1 {
		gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}
	return gray
}

// Preprocess converts a frame to grayscale and applies a Gaussian blur with a
// blurSize x blurSize kernel. A blurSize below 1 skips the blur; even sizes
// are rounded up to the next odd value as OpenCV requires.
func Preprocess(frame gocv.Mat, blurSize int) gocv.Mat {
	gray := Grayscale(frame)
	if blurSize < 1 {
		return gray
	}
	if blurSize%2 == 0 {
		blurSize++
	}

	blurred := gocv.NewMat()
	gocv.GaussianBlur(gray, &blurred, image.Pt(blurSize, blurSize), 0, 0, gocv.BorderDefault)
	gray.Close()
	return blurred
}

// Threshold returns the binary mask of pixels brighter than level.
func Threshold(src gocv.Mat, level float32) gocv.Mat {
	mask := gocv.NewMat()
	gocv.Threshold(src, &mask, level, 255, gocv.ThresholdBinary)
	return mask
}

// Difference thresholds the absolute difference of two frames. Color frames
// are converted to grayscale first. Frames of different sizes are not
// compared and yield ErrSizeMismatch.
// The caller is responsible for closing the returned Mat.
func Difference(a, b gocv.Mat, level float32) (gocv.Mat, error) {
	if a.Cols() != b.Cols() || a.Rows() != b.Rows() {
		return gocv.NewMat(), fmt.Errorf("%w: %dx%d and %dx%d",
			ErrSizeMismatch, a.Cols(), a.Rows(), b.Cols(), b.Rows())
	}

	grayA := Grayscale(a)
	defer grayA.Close()

	grayB := Grayscale(b)
	defer grayB.Close()

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(grayA, grayB, &diff)

	return Threshold(diff, level), nil
}
