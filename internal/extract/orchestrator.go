package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"lingclip/internal/config"
	"lingclip/internal/logging"
	"lingclip/internal/media/ffprobe"
	"lingclip/internal/services"
	"lingclip/internal/store"
	"lingclip/internal/subtitle"
)

// Format selects the container and codec family of an extracted clip.
type Format string

const (
	FormatMP4 Format = "mp4"
	FormatMP3 Format = "mp3"
)

// Status classifies how one extraction ended.
type Status string

const (
	StatusSuccess      Status = "success"
	StatusInputInvalid Status = "input_invalid"
	StatusToolError    Status = "tool_error"
	StatusTimeout      Status = "timeout"
	StatusIOError      Status = "io_error"
	StatusSkipped      Status = "skipped"
)

// Request describes one clip to extract. Order identifies the unit within
// its batch; single extractions use the sentence order too.
type Request struct {
	Order       int
	MediaPath   string
	MediaKind   ffprobe.Kind
	Start       float64
	Duration    float64
	OutputPath  string
	CaptionPath string
	Format      Format
}

// Result reports the outcome of one extraction request.
type Result struct {
	Request Request
	Status  Status
	Err     error
	Elapsed time.Duration
}

// Orchestrator drives the external transcoder to cut clips, burning caption
// documents in as it goes.
type Orchestrator struct {
	cfg      *config.Config
	store    *store.Store
	logger   *slog.Logger
	glossary []subtitle.Phrase
}

// New constructs an orchestrator.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{cfg: cfg, store: st, logger: logger}
}

// SetGlossary installs the phrase glossary used by the annotation track.
func (o *Orchestrator) SetGlossary(glossary []subtitle.Phrase) {
	o.glossary = glossary
}

// Timeout computes the per-unit subprocess deadline. It grows linearly with
// clip duration, never drops below the base, and carries a 50% buffer on top.
func Timeout(baseSeconds int, durationSeconds float64) time.Duration {
	factor := durationSeconds / 60
	if factor < 1 {
		factor = 1
	}
	seconds := float64(baseSeconds) * factor * 1.5
	return time.Duration(seconds * float64(time.Second))
}

// StatusFor maps a wrapped error onto the extraction status taxonomy.
func StatusFor(err error) Status {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, services.ErrValidation):
		return StatusInputInvalid
	case errors.Is(err, services.ErrTimeout):
		return StatusTimeout
	case errors.Is(err, services.ErrIO):
		return StatusIOError
	default:
		return StatusToolError
	}
}

// Extract runs one extraction request to completion. Partial outputs are
// deleted on every failure path; the caption document is the caller's to
// clean up, since batches reuse none and delete each immediately.
func (o *Orchestrator) Extract(ctx context.Context, req Request) Result {
	started := time.Now()
	err := o.extract(ctx, req)
	result := Result{
		Request: req,
		Status:  StatusFor(err),
		Err:     err,
		Elapsed: time.Since(started),
	}
	if err != nil {
		o.logger.Error("extraction failed",
			logging.String("output", filepath.Base(req.OutputPath)),
			logging.String("status", string(result.Status)),
			logging.Error(err))
	} else {
		o.logger.Info("extraction complete",
			logging.String("output", filepath.Base(req.OutputPath)),
			logging.Duration("elapsed", result.Elapsed))
	}
	return result
}

func (o *Orchestrator) extract(ctx context.Context, req Request) error {
	if err := validateInput(req); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0o755); err != nil {
		return services.Wrap(services.ErrIO, "extract", "prepare output dir", "", err)
	}

	timeout := Timeout(o.cfg.FFmpeg.BaseTimeout, req.Duration)
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := o.buildArgs(req)
	cmd := exec.CommandContext(runCtx, o.cfg.FFmpeg.Binary, args...) //nolint:gosec
	// A killed transcoder can leave children holding the output pipe open;
	// WaitDelay bounds how long we wait for it after the deadline fires.
	cmd.WaitDelay = 2 * time.Second
	output, err := cmd.CombinedOutput()

	if runCtx.Err() == context.DeadlineExceeded {
		removePartial(req.OutputPath)
		return services.Wrap(services.ErrTimeout, "extract", "transcode",
			fmt.Sprintf("killed after %s", timeout), nil)
	}
	if err != nil {
		removePartial(req.OutputPath)
		return services.Wrap(services.ErrExternalTool, "extract", "transcode",
			tailOf(output), err)
	}

	info, statErr := os.Stat(req.OutputPath)
	if statErr != nil || info.Size() == 0 {
		removePartial(req.OutputPath)
		return services.Wrap(services.ErrExternalTool, "extract", "verify output",
			"transcoder exited cleanly but produced no output", nil)
	}
	return nil
}

func validateInput(req Request) error {
	info, err := os.Stat(req.MediaPath)
	if err != nil {
		return services.Wrap(services.ErrValidation, "extract", "validate input",
			fmt.Sprintf("media file %s is not accessible", req.MediaPath), err)
	}
	if info.IsDir() || info.Size() == 0 {
		return services.Wrap(services.ErrValidation, "extract", "validate input",
			fmt.Sprintf("media file %s is empty", req.MediaPath), nil)
	}
	f, err := os.Open(req.MediaPath)
	if err != nil {
		return services.Wrap(services.ErrValidation, "extract", "validate input",
			fmt.Sprintf("media file %s is not readable", req.MediaPath), err)
	}
	_ = f.Close()
	if req.Duration <= 0 {
		return services.Wrap(services.ErrValidation, "extract", "validate input",
			"clip duration must be positive", nil)
	}
	return nil
}

// buildArgs assembles the transcoder command line. Video sources seek into
// the file directly; audio sources get a synthesized black canvas so caption
// burn-in has a frame to land on.
func (o *Orchestrator) buildArgs(req Request) []string {
	ff := o.cfg.FFmpeg

	if req.Format == FormatMP3 {
		return []string{
			"-ss", formatSeconds(req.Start),
			"-i", req.MediaPath,
			"-t", formatSeconds(req.Duration),
			"-vn",
			"-af", fmt.Sprintf("volume=%g", ff.VolumeGain),
			"-c:a", "mp3",
			"-b:a", ff.AudioBitrate,
			"-y",
			req.OutputPath,
		}
	}

	if req.MediaKind == ffprobe.KindAudio {
		args := []string{
			"-f", "lavfi",
			"-i", fmt.Sprintf("color=black:size=%dx%d:duration=%s:rate=%d",
				ff.CanvasWidth, ff.CanvasHeight, formatSeconds(req.Duration), ff.FrameRate),
			"-ss", formatSeconds(req.Start),
			"-i", req.MediaPath,
			"-t", formatSeconds(req.Duration),
		}
		if req.CaptionPath != "" {
			args = append(args,
				"-filter_complex",
				fmt.Sprintf("[0:v]subtitles=%s:fontsdir=%s[v]", req.CaptionPath, o.cfg.Paths.FontsDir),
				"-map", "[v]",
				"-map", "1:a",
			)
		} else {
			args = append(args, "-map", "0:v", "-map", "1:a")
		}
		args = append(args,
			"-af", fmt.Sprintf("volume=%g", ff.VolumeGain),
			"-c:v", "libx264",
			"-preset", ff.VideoPreset,
			"-crf", fmt.Sprintf("%d", ff.VideoCRF),
			"-pix_fmt", "yuv420p",
			"-c:a", "aac",
			"-b:a", ff.AudioBitrate,
			"-shortest",
			"-y",
			req.OutputPath,
		)
		return args
	}

	args := []string{
		"-ss", formatSeconds(req.Start),
		"-i", req.MediaPath,
		"-t", formatSeconds(req.Duration),
	}
	if req.CaptionPath != "" {
		args = append(args, "-vf",
			fmt.Sprintf("subtitles=%s:fontsdir=%s", req.CaptionPath, o.cfg.Paths.FontsDir))
	}
	args = append(args,
		"-af", fmt.Sprintf("volume=%g", ff.VolumeGain),
		"-c:v", "libx264",
		"-preset", ff.VideoPreset,
		"-crf", fmt.Sprintf("%d", ff.VideoCRF),
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", ff.AudioBitrate,
		"-y",
		req.OutputPath,
	)
	return args
}

func formatSeconds(seconds float64) string {
	return fmt.Sprintf("%.3f", seconds)
}

func removePartial(path string) {
	if path == "" {
		return
	}
	_ = os.Remove(path)
}

func tailOf(output []byte) string {
	text := strings.TrimSpace(string(output))
	const keep = 400
	if len(text) > keep {
		text = "..." + text[len(text)-keep:]
	}
	return text
}
