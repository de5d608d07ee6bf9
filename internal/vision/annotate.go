package vision

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/motioncam/internal/motion"
)

// Banner is drawn in the top-left corner of frames that contain motion.
const Banner = "Motion Detected"

var (
	boxColor    = color.RGBA{G: 255, A: 255}
	bannerColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Annotate draws a green box around every region and, when there is at least
// one, the motion banner.
func Annotate(frame *gocv.Mat, regions []motion.Region) {
	if frame == nil || frame.Empty() || len(regions) == 0 {
		return
	}

	for _, r := range regions {
		gocv.Rectangle(frame, r.Rect(), boxColor, 2)
	}
	gocv.PutText(frame, Banner, image.Pt(10, 20), gocv.FontHersheySimplex, 0.7, bannerColor, 2)
}
