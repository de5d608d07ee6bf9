package motion

import "encoding/json"

// Result is the outcome of one detection. Region is non-nil if and only if
// Detected is true. Err carries a message when the input could not be
// decoded, in which case selection never ran.
type Result struct {
	Detected       bool
	Region         *Region
	CandidateCount int
	LargestArea    float64
	Err            string
}

// Detection pairs a Result with the candidates it was selected from, so the
// caller can annotate every qualifying region and not only the largest.
type Detection struct {
	Result     Result
	Candidates []Region
	MinArea    float64
}

// Detect runs Select over candidates and keeps them alongside the result.
func Detect(candidates []Region, minArea float64) Detection {
	return Detection{
		Result:     Select(candidates, minArea),
		Candidates: candidates,
		MinArea:    minArea,
	}
}

// Qualifying returns the candidates that passed the minimum-area filter.
func (d Detection) Qualifying() []Region {
	return Qualifying(d.Candidates, d.MinArea)
}

// Failure builds the error variant of a Result.
func Failure(err error) Result {
	return Result{Err: err.Error()}
}

// Failed reports whether r is the error variant.
func (r Result) Failed() bool {
	return r.Err != ""
}

type rectJSON struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
	Area   int `json:"area"`
}

type resultJSON struct {
	Error          string    `json:"error,omitempty"`
	MotionDetected bool      `json:"motion_detected"`
	MotionRect     *rectJSON `json:"motion_rect"`
	TotalContours  *int      `json:"total_contours,omitempty"`
	LargestArea    *int      `json:"largest_area,omitempty"`
}

// MarshalJSON renders the result in the wire format shared by the CLI and the
// HTTP API. Areas are truncated to whole pixels. The error variant carries only
// error, motion_detected and motion_rect.
func (r Result) MarshalJSON() ([]byte, error) {
	out := resultJSON{
		Error:          r.Err,
		MotionDetected: r.Detected,
	}
	if r.Region != nil {
		out.MotionRect = &rectJSON{
			X:      r.Region.X,
			Y:      r.Region.Y,
			Width:  r.Region.Width,
			Height: r.Region.Height,
			Area:   int(r.Region.Area),
		}
	}
	if !r.Failed() {
		total := r.CandidateCount
		largest := int(r.LargestArea)
		out.TotalContours = &total
		out.LargestArea = &largest
	}
	return json.Marshal(out)
}

// UnmarshalJSON parses the wire format produced by MarshalJSON.
func (r *Result) UnmarshalJSON(data []byte) error {
	var in resultJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	*r = Result{
		Detected: in.MotionDetected,
		Err:      in.Error,
	}
	if in.MotionRect != nil {
		r.Region = &Region{
			X:      in.MotionRect.X,
			Y:      in.MotionRect.Y,
			Width:  in.MotionRect.Width,
			Height: in.MotionRect.Height,
			Area:   float64(in.MotionRect.Area),
		}
	}
	if in.TotalContours != nil {
		r.CandidateCount = *in.TotalContours
	}
	if in.LargestArea != nil {
		r.LargestArea = float64(*in.LargestArea)
	}
	return nil
}
