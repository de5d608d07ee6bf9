// Package motion selects the motion region to report from the candidate
// contours produced by a vision pipeline.
package motion

import "image"

// Region is the bounding rectangle of a moving area. Area is the pixel area
// of the originating contour, which is usually smaller than Width*Height.
type Region struct {
	X      int     `json:"x"`
	Y      int     `json:"y"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Area   float64 `json:"area"`
}

// NewRegion builds a Region from a bounding rectangle and a contour area.
func NewRegion(rect image.Rectangle, area float64) Region {
	return Region{
		X:      rect.Min.X,
		Y:      rect.Min.Y,
		Width:  rect.Dx(),
		Height: rect.Dy(),
		Area:   area,
	}
}

// Rect returns the region as an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Center returns the coordinates of the region center.
func (r Region) Center() (x, y int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}
