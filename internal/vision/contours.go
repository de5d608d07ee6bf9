package vision

import (
	"image"

	"gocv.io/x/gocv"

	"github.com/ayusman/motioncam/internal/motion"
)

// Candidates extracts the external contours of a binary mask as motion
// regions, in the order OpenCV returns them.
func Candidates(mask gocv.Mat) []motion.Region {
	if mask.Empty() {
		return nil
	}

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	regions := make([]motion.Region, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		c := contours.At(i)
		regions = append(regions, motion.NewRegion(gocv.BoundingRect(c), gocv.ContourArea(c)))
	}

	return regions
}

// Dilate grows the white areas of mask in place with a 3x3 rectangular
// kernel, once per iteration.
func Dilate(mask *gocv.Mat, iterations int) {
	if iterations <= 0 || mask.Empty() {
		return
	}

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3))
	defer kernel.Close()

	for i := 0; i < iterations; i++ {
		gocv.Dilate(*mask, mask, kernel)
	}
}
