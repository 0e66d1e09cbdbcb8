package extract_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"lingclip/internal/config"
	"lingclip/internal/extract"
	"lingclip/internal/media/ffprobe"
	"lingclip/internal/services"
	"lingclip/internal/testsupport"
)

// writeTool installs a shell script as the transcoder binary and points the
// config at it. The script appends its argv to args.log in the base dir.
func writeTool(t *testing.T, cfg *config.Config, body string) string {
	t.Helper()
	base := testsupport.BaseDir(cfg)
	argsLog := filepath.Join(base, "args.log")
	script := "#!/bin/sh\necho \"$@\" >> " + argsLog + "\n" + body
	path := filepath.Join(base, "fake-ffmpeg")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write tool: %v", err)
	}
	cfg.FFmpeg.Binary = path
	return argsLog
}

const succeedBody = `for last; do :; done
printf data > "$last"
exit 0
`

func newRequest(cfg *config.Config, mediaPath string) extract.Request {
	return extract.Request{
		MediaPath:  mediaPath,
		MediaKind:  ffprobe.KindVideo,
		Start:      5,
		Duration:   3,
		OutputPath: filepath.Join(cfg.Paths.OutputDir, "clip.mp4"),
		Format:     extract.FormatMP4,
	}
}

func TestExtractSuccess(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	writeTool(t, cfg, succeedBody)
	mediaPath := filepath.Join(cfg.Paths.MediaDir, "input.mp4")
	testsupport.WriteMediaFile(t, mediaPath, 2048)

	o := extract.New(cfg, nil, nil)
	result := o.Extract(context.Background(), newRequest(cfg, mediaPath))

	if result.Status != extract.StatusSuccess {
		t.Fatalf("expected success, got %s: %v", result.Status, result.Err)
	}
	if _, err := os.Stat(result.Request.OutputPath); err != nil {
		t.Fatalf("output missing: %v", err)
	}
}

func TestExtractMissingInput(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	argsLog := writeTool(t, cfg, succeedBody)

	o := extract.New(cfg, nil, nil)
	result := o.Extract(context.Background(), newRequest(cfg, filepath.Join(cfg.Paths.MediaDir, "missing.mp4")))

	if result.Status != extract.StatusInputInvalid {
		t.Fatalf("expected input_invalid, got %s", result.Status)
	}
	if !errors.Is(result.Err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", result.Err)
	}
	// No subprocess may be spawned for invalid input.
	if _, err := os.Stat(argsLog); !os.IsNotExist(err) {
		t.Fatal("transcoder ran despite invalid input")
	}
}

func TestExtractEmptyInput(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	writeTool(t, cfg, succeedBody)
	mediaPath := filepath.Join(cfg.Paths.MediaDir, "empty.mp4")
	if err := os.MkdirAll(cfg.Paths.MediaDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(mediaPath, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	o := extract.New(cfg, nil, nil)
	result := o.Extract(context.Background(), newRequest(cfg, mediaPath))
	if result.Status != extract.StatusInputInvalid {
		t.Fatalf("expected input_invalid, got %s", result.Status)
	}
}

func TestExtractToolFailureDeletesPartialOutput(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	// The tool writes a partial file, then fails.
	writeTool(t, cfg, "for last; do :; done\nprintf partial > \"$last\"\nexit 1\n")
	mediaPath := filepath.Join(cfg.Paths.MediaDir, "input.mp4")
	testsupport.WriteMediaFile(t, mediaPath, 2048)

	o := extract.New(cfg, nil, nil)
	result := o.Extract(context.Background(), newRequest(cfg, mediaPath))

	if result.Status != extract.StatusToolError {
		t.Fatalf("expected tool_error, got %s: %v", result.Status, result.Err)
	}
	if _, err := os.Stat(result.Request.OutputPath); !os.IsNotExist(err) {
		t.Fatal("partial output not deleted")
	}
}

func TestExtractEmptyOutputIsToolError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	writeTool(t, cfg, "exit 0\n")
	mediaPath := filepath.Join(cfg.Paths.MediaDir, "input.mp4")
	testsupport.WriteMediaFile(t, mediaPath, 2048)

	o := extract.New(cfg, nil, nil)
	result := o.Extract(context.Background(), newRequest(cfg, mediaPath))
	if result.Status != extract.StatusToolError {
		t.Fatalf("expected tool_error for empty output, got %s", result.Status)
	}
}

func TestExtractTimeoutKillsSubprocess(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	writeTool(t, cfg, "for last; do :; done\nprintf partial > \"$last\"\nexec sleep 30\n")
	cfg.FFmpeg.BaseTimeout = 1
	mediaPath := filepath.Join(cfg.Paths.MediaDir, "input.mp4")
	testsupport.WriteMediaFile(t, mediaPath, 2048)

	o := extract.New(cfg, nil, nil)
	started := time.Now()
	result := o.Extract(context.Background(), newRequest(cfg, mediaPath))

	if result.Status != extract.StatusTimeout {
		t.Fatalf("expected timeout, got %s: %v", result.Status, result.Err)
	}
	if elapsed := time.Since(started); elapsed > 10*time.Second {
		t.Fatalf("subprocess not killed promptly, took %s", elapsed)
	}
	if _, err := os.Stat(result.Request.OutputPath); !os.IsNotExist(err) {
		t.Fatal("partial output not deleted after timeout")
	}
}

func TestExtractVideoArgs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	argsLog := writeTool(t, cfg, succeedBody)
	mediaPath := filepath.Join(cfg.Paths.MediaDir, "input.mp4")
	testsupport.WriteMediaFile(t, mediaPath, 2048)

	captionPath := filepath.Join(cfg.Paths.WorkDir, "caption.ass")
	testsupport.WriteMediaFile(t, captionPath, 64)

	req := newRequest(cfg, mediaPath)
	req.CaptionPath = captionPath

	o := extract.New(cfg, nil, nil)
	if result := o.Extract(context.Background(), req); result.Status != extract.StatusSuccess {
		t.Fatalf("extract: %v", result.Err)
	}

	data, err := os.ReadFile(argsLog)
	if err != nil {
		t.Fatalf("read args log: %v", err)
	}
	args := string(data)
	for _, want := range []string{
		"-ss 5.000", "-t 3.000", "subtitles=" + captionPath,
		"-c:v libx264", "-crf 23", "-pix_fmt yuv420p", "-c:a aac",
	} {
		if !strings.Contains(args, want) {
			t.Errorf("args missing %q: %s", want, args)
		}
	}
}

func TestExtractAudioSourceArgs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	argsLog := writeTool(t, cfg, succeedBody)
	mediaPath := filepath.Join(cfg.Paths.MediaDir, "input.mp3")
	testsupport.WriteMediaFile(t, mediaPath, 2048)

	req := newRequest(cfg, mediaPath)
	req.MediaKind = ffprobe.KindAudio

	o := extract.New(cfg, nil, nil)
	if result := o.Extract(context.Background(), req); result.Status != extract.StatusSuccess {
		t.Fatalf("extract: %v", result.Err)
	}

	data, err := os.ReadFile(argsLog)
	if err != nil {
		t.Fatalf("read args log: %v", err)
	}
	args := string(data)
	for _, want := range []string{"-f lavfi", "color=black:size=1920x1080", "-shortest"} {
		if !strings.Contains(args, want) {
			t.Errorf("args missing %q: %s", want, args)
		}
	}
}

func TestExtractAudioOnlyArgs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	argsLog := writeTool(t, cfg, succeedBody)
	mediaPath := filepath.Join(cfg.Paths.MediaDir, "input.mp4")
	testsupport.WriteMediaFile(t, mediaPath, 2048)

	req := newRequest(cfg, mediaPath)
	req.Format = extract.FormatMP3
	req.OutputPath = filepath.Join(cfg.Paths.OutputDir, "clip.mp3")

	o := extract.New(cfg, nil, nil)
	if result := o.Extract(context.Background(), req); result.Status != extract.StatusSuccess {
		t.Fatalf("extract: %v", result.Err)
	}

	data, err := os.ReadFile(argsLog)
	if err != nil {
		t.Fatalf("read args log: %v", err)
	}
	args := string(data)
	for _, want := range []string{"-vn", "-c:a mp3", "-b:a 128k"} {
		if !strings.Contains(args, want) {
			t.Errorf("args missing %q: %s", want, args)
		}
	}
	if strings.Contains(args, "libx264") {
		t.Fatal("audio-only extraction must not encode video")
	}
}

func TestTimeoutFormula(t *testing.T) {
	cases := []struct {
		base     int
		duration float64
		want     time.Duration
	}{
		{120, 30, 180 * time.Second},   // floor at base
		{120, 60, 180 * time.Second},   // exactly one minute
		{120, 120, 360 * time.Second},  // scales with duration
		{120, 600, 1800 * time.Second}, // ten minutes
	}
	for _, tc := range cases {
		if got := extract.Timeout(tc.base, tc.duration); got != tc.want {
			t.Errorf("Timeout(%d, %g) = %s, want %s", tc.base, tc.duration, got, tc.want)
		}
	}
}

func TestTimeoutMonotonic(t *testing.T) {
	prev := time.Duration(0)
	for _, duration := range []float64{10, 60, 90, 300, 3600} {
		got := extract.Timeout(120, duration)
		if got < prev {
			t.Fatalf("timeout decreased at duration %g", duration)
		}
		prev = got
	}
}
