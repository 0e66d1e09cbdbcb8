package ingest

import (
	"regexp"
	"strconv"
	"strings"

	"lingclip/internal/services"
)

// Cue is one raw transcript entry before sanitization.
type Cue struct {
	Text  string
	Start float64
	End   float64
}

var srtTimePattern = regexp.MustCompile(`(\d+):(\d{2}):(\d{2})[,.](\d{1,3})`)
var srtArrowPattern = regexp.MustCompile(`-->`)

// ParseSRT reads SubRip transcript bytes into ordered cues. Index lines are
// ignored; blocks with malformed timing lines are skipped rather than
// failing the whole transcript.
func ParseSRT(data []byte) ([]Cue, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.TrimPrefix(text, "\ufeff")

	var cues []Cue
	for _, block := range strings.Split(text, "\n\n") {
		lines := nonEmptyLines(block)
		if len(lines) == 0 {
			continue
		}

		timingIdx := -1
		for i, line := range lines {
			if srtArrowPattern.MatchString(line) {
				timingIdx = i
				break
			}
		}
		if timingIdx < 0 || timingIdx == len(lines)-1 {
			continue
		}

		start, end, ok := parseTiming(lines[timingIdx])
		if !ok {
			continue
		}
		cues = append(cues, Cue{
			Text:  strings.Join(lines[timingIdx+1:], "\n"),
			Start: start,
			End:   end,
		})
	}

	if len(cues) == 0 {
		return nil, services.Wrap(services.ErrValidation, "ingest", "parse srt",
			"transcript contains no usable cues", nil)
	}
	return cues, nil
}

func nonEmptyLines(block string) []string {
	var lines []string
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func parseTiming(line string) (start, end float64, ok bool) {
	stamps := srtTimePattern.FindAllStringSubmatch(line, 2)
	if len(stamps) != 2 {
		return 0, 0, false
	}
	start, err := stampSeconds(stamps[0])
	if err != nil {
		return 0, 0, false
	}
	end, err = stampSeconds(stamps[1])
	if err != nil {
		return 0, 0, false
	}
	return start, end, true
}

func stampSeconds(groups []string) (float64, error) {
	hours, err := strconv.Atoi(groups[1])
	if err != nil {
		return 0, err
	}
	minutes, err := strconv.Atoi(groups[2])
	if err != nil {
		return 0, err
	}
	seconds, err := strconv.Atoi(groups[3])
	if err != nil {
		return 0, err
	}
	msText := groups[4]
	for len(msText) < 3 {
		msText += "0"
	}
	millis, err := strconv.Atoi(msText)
	if err != nil {
		return 0, err
	}
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}
