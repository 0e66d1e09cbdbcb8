package silence

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"lingclip/internal/services"
)

// Interval is a contiguous span of the source audio judged to contain no
// speech. Intervals are ordered by start time.
type Interval struct {
	Start    float64
	End      float64
	Duration float64
}

// Options controls the silencedetect filter parameters.
type Options struct {
	// NoiseDB is the level below which audio counts as silence, e.g. -40.
	NoiseDB int
	// MinSeconds is the minimum silence length reported, e.g. 2.0.
	MinSeconds float64
	// TotalSeconds, when positive, closes a silence that runs to end of
	// stream (ffmpeg never emits the matching silence_end line).
	TotalSeconds float64
}

var (
	startPattern = regexp.MustCompile(`silence_start:\s*(-?\d+(?:\.\d+)?)`)
	endPattern   = regexp.MustCompile(`silence_end:\s*(-?\d+(?:\.\d+)?)`)
)

// Detect runs ffmpeg's silencedetect filter over the media file and returns
// the ordered silence intervals found.
func Detect(ctx context.Context, binary, path string, opts Options) ([]Interval, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	if strings.TrimSpace(path) == "" {
		return nil, services.Wrap(services.ErrValidation, "silence", "detect", "empty media path", nil)
	}

	filter := fmt.Sprintf("silencedetect=noise=%ddB:d=%g", opts.NoiseDB, opts.MinSeconds)
	args := []string{
		"-hide_banner",
		"-nostats",
		"-i", path,
		"-af", filter,
		"-vn",
		"-f", "null",
		"-",
	}
	cmd := exec.CommandContext(ctx, binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "silence", "detect",
			strings.TrimSpace(string(output)), err)
	}

	return Parse(string(output), opts.TotalSeconds), nil
}

// Parse extracts silence intervals from silencedetect filter output. Lines
// that do not match the filter's report format are ignored. A silence_start
// without a matching silence_end is closed at totalSeconds when known,
// otherwise dropped.
func Parse(output string, totalSeconds float64) []Interval {
	var intervals []Interval
	openStart := -1.0

	for _, line := range strings.Split(output, "\n") {
		if m := startPattern.FindStringSubmatch(line); m != nil {
			if value, err := strconv.ParseFloat(m[1], 64); err == nil {
				openStart = value
				if openStart < 0 {
					openStart = 0
				}
			}
			continue
		}
		if m := endPattern.FindStringSubmatch(line); m != nil && openStart >= 0 {
			value, err := strconv.ParseFloat(m[1], 64)
			if err != nil || value <= openStart {
				openStart = -1
				continue
			}
			intervals = append(intervals, Interval{
				Start:    openStart,
				End:      value,
				Duration: value - openStart,
			})
			openStart = -1
		}
	}

	if openStart >= 0 && totalSeconds > openStart {
		intervals = append(intervals, Interval{
			Start:    openStart,
			End:      totalSeconds,
			Duration: totalSeconds - openStart,
		})
	}

	return intervals
}
