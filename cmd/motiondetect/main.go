// Command motiondetect runs one stateless motion detection over base64
// encoded frames and prints the result as JSON.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/ayusman/motioncam/internal/detector"
	"github.com/ayusman/motioncam/internal/motion"
)

const (
	flagMinArea   = "min-area"
	flagThreshold = "threshold"
	flagStdin     = "stdin"
)

const usage = "Usage: motiondetect <method> <frame_data> [frame2_data]"

func main() {
	if err := newApp(os.Stdin, os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(stdin io.Reader, stdout io.Writer) *cli.App {
	defaults := detector.DefaultOptions()

	return &cli.App{
		Name:      "motiondetect",
		Usage:     "find the largest moving region in one or two frames",
		ArgsUsage: "<method> <frame_data> [frame2_data]",
		Reader:    stdin,
		Writer:    stdout,
		Flags: []cli.Flag{
			&cli.Float64Flag{
				Name:  flagMinArea,
				Value: defaults.MinArea,
				Usage: "ignore regions with an area at or below `PIXELS`",
			},
			&cli.Float64Flag{
				Name:  flagThreshold,
				Value: defaults.Threshold,
				Usage: "binary threshold for frame differencing",
			},
			&cli.BoolFlag{
				Name:  flagStdin,
				Usage: `read {"method": ..., "frames": [...]} from stdin instead of arguments`,
			},
		},
		HideHelpCommand: true,
		Action:          detect,
		ExitErrHandler:  func(*cli.Context, error) {},
	}
}

func detect(c *cli.Context) error {
	opts := detector.Options{
		MinArea:   c.Float64(flagMinArea),
		Threshold: c.Float64(flagThreshold),
	}
	if err := motion.ValidateMinArea(opts.MinArea); err != nil {
		return invalid(c.App.Writer, err)
	}
	if opts.Threshold < 0 || opts.Threshold > 255 {
		return invalid(c.App.Writer, fmt.Errorf("threshold must be between 0 and 255, got %v", opts.Threshold))
	}

	var req detector.Request
	if c.Bool(flagStdin) {
		if err := json.NewDecoder(c.App.Reader).Decode(&req); err != nil {
			return writeJSON(c.App.Writer, motion.Failure(fmt.Errorf("invalid request: %w", err)))
		}
	} else {
		args := c.Args().Slice()
		if len(args) < 2 {
			return writeJSON(c.App.Writer, map[string]string{"error": usage})
		}
		req = detector.Request{Method: args[0], Frames: args[1:]}
	}

	return writeJSON(c.App.Writer, detector.Analyze(req, opts))
}

// invalid reports a bad option as a failed result and exits with status 1.
func invalid(w io.Writer, err error) error {
	if werr := writeJSON(w, motion.Failure(err)); werr != nil {
		return werr
	}
	return cli.Exit(err.Error(), 1)
}

func writeJSON(w io.Writer, v interface{}) error {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}
