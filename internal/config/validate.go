package config

import (
	"errors"
	"fmt"

	"lingclip/internal/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateFFmpeg(); err != nil {
		return err
	}
	if err := c.validateSegmentation(); err != nil {
		return err
	}
	if err := c.validateSubtitles(); err != nil {
		return err
	}
	return c.validateExtraction()
}

func (c *Config) validatePaths() error {
	if c.Paths.DatabasePath == "" {
		return errors.New("paths.database_path must be set")
	}
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.Paths.WorkDir == "" {
		return errors.New("paths.work_dir must be set")
	}
	return nil
}

func (c *Config) validateFFmpeg() error {
	if c.FFmpeg.Binary == "" {
		return errors.New("ffmpeg.binary must be set")
	}
	if c.FFmpeg.ProbeBinary == "" {
		return errors.New("ffmpeg.probe_binary must be set")
	}
	if err := ensurePositiveMap(map[string]int{
		"ffmpeg.base_timeout":  c.FFmpeg.BaseTimeout,
		"ffmpeg.video_crf":     c.FFmpeg.VideoCRF,
		"ffmpeg.canvas_width":  c.FFmpeg.CanvasWidth,
		"ffmpeg.canvas_height": c.FFmpeg.CanvasHeight,
		"ffmpeg.frame_rate":    c.FFmpeg.FrameRate,
	}); err != nil {
		return err
	}
	if c.FFmpeg.VolumeGain <= 0 {
		return errors.New("ffmpeg.volume_gain must be positive")
	}
	return nil
}

func (c *Config) validateSegmentation() error {
	if c.Segmentation.ChapterCount < 1 {
		return errors.New("segmentation.chapter_count must be at least 1")
	}
	if c.Segmentation.SceneGapSeconds <= 0 {
		return errors.New("segmentation.scene_gap_seconds must be positive")
	}
	if c.Segmentation.SceneMinSentences < 1 {
		return errors.New("segmentation.scene_min_sentences must be at least 1")
	}
	if c.Segmentation.SilenceNoiseDB >= 0 {
		return errors.New("segmentation.silence_noise_db must be negative")
	}
	if c.Segmentation.SilenceMinSeconds <= 0 {
		return errors.New("segmentation.silence_min_seconds must be positive")
	}
	return nil
}

func (c *Config) validateSubtitles() error {
	for key, code := range map[string]string{
		"subtitles.source_language": c.Subtitles.SourceLanguage,
		"subtitles.target_language": c.Subtitles.TargetLanguage,
	} {
		if code == "" {
			return fmt.Errorf("%s must be set", key)
		}
		if !language.Known(code) {
			return fmt.Errorf("%s: unknown language code %q", key, code)
		}
	}
	if c.Subtitles.FontFamily == "" {
		return errors.New("subtitles.font_family must be set")
	}
	return ensurePositiveMap(map[string]int{
		"subtitles.source_font_size":     c.Subtitles.SourceFontSize,
		"subtitles.target_font_size":     c.Subtitles.TargetFontSize,
		"subtitles.annotation_font_size": c.Subtitles.AnnotationFontSize,
		"subtitles.max_annotations":      c.Subtitles.MaxAnnotations,
	})
}

func (c *Config) validateExtraction() error {
	if c.Extraction.Parallelism < 1 {
		return errors.New("extraction.parallelism must be at least 1")
	}
	if c.Extraction.Parallelism > MaxParallelism {
		return fmt.Errorf("extraction.parallelism must not exceed %d", MaxParallelism)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
