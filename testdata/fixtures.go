// Package testdata builds synthetic frames for tests that exercise the GoCV
// pipeline without a camera.
package testdata

import (
	"encoding/base64"
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Default synthetic frame size.
const (
	Width  = 320
	Height = 240
)

var white = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// BlankFrame returns a black 3-channel frame.
func BlankFrame() gocv.Mat {
	return gocv.NewMatWithSize(Height, Width, gocv.MatTypeCV8UC3)
}

// FrameWithBoxes returns a black frame with a filled white rectangle for each
// of rects.
func FrameWithBoxes(rects ...image.Rectangle) gocv.Mat {
	frame := BlankFrame()
	for _, r := range rects {
		gocv.Rectangle(&frame, r, white, -1)
	}
	return frame
}

// MaskWithBoxes returns a single-channel binary mask with a filled white
// rectangle for each of rects.
func MaskWithBoxes(rects ...image.Rectangle) gocv.Mat {
	mask := gocv.NewMatWithSize(Height, Width, gocv.MatTypeCV8U)
	for _, r := range rects {
		gocv.Rectangle(&mask, r, white, -1)
	}
	return mask
}

// Base64JPEG encodes frame as a base64 JPEG string.
func Base64JPEG(frame gocv.Mat) (string, error) {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, frame)
	if err != nil {
		return "", fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	return base64.StdEncoding.EncodeToString(buf.GetBytes()), nil
}

// Sequence returns n frames in which a white box of the given size moves
// step pixels to the right each frame. The caller closes every frame.
func Sequence(n, size, step int) []*gocv.Mat {
	frames := make([]*gocv.Mat, 0, n)
	for i := 0; i < n; i++ {
		x := 10 + i*step
		frame := FrameWithBoxes(image.Rect(x, 60, x+size, 60+size))
		frames = append(frames, &frame)
	}
	return frames
}

// CloseAll closes every frame in frames.
func CloseAll(frames []*gocv.Mat) {
	for _, f := range frames {
		if f != nil {
			f.Close()
		}
	}
}
