package motion

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidMinArea is returned for a minimum area that is negative or not a number.
var ErrInvalidMinArea = errors.New("invalid minimum area")

// ValidateMinArea checks a minimum-area threshold.
func ValidateMinArea(minArea float64) error {
	if math.IsNaN(minArea) || math.IsInf(minArea, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidMinArea, minArea)
	}
	if minArea < 0 {
		return fmt.Errorf("%w: %v is negative", ErrInvalidMinArea, minArea)
	}
	return nil
}

// Select returns the candidate with the greatest area strictly above minArea.
// On equal areas the first candidate wins. CandidateCount is always the
// number of candidates passed in, qualifying or not.
func Select(candidates []Region, minArea float64) Result {
	var best *Region
	largest := 0.0

	for i := range candidates {
		area := candidates[i].Area
		if area > minArea && area > largest {
			largest = area
			c := candidates[i]
			best = &c
		}
	}

	if best == nil {
		return Result{CandidateCount: len(candidates)}
	}

	return Result{
		Detected:       true,
		Region:         best,
		CandidateCount: len(candidates),
		LargestArea:    largest,
	}
}

// Qualifying returns every candidate with an area strictly above minArea,
// in input order.
func Qualifying(candidates []Region, minArea float64) []Region {
	out := make([]Region, 0, len(candidates))
	for _, c := range candidates {
		if c.Area > minArea {
			out = append(out, c)
		}
	}
	return out
}
