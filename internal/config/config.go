package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	MediaDir     string `toml:"media_dir"`
	OutputDir    string `toml:"output_dir"`
	WorkDir      string `toml:"work_dir"`
	FontsDir     string `toml:"fonts_dir"`
	LogDir       string `toml:"log_dir"`
	DatabasePath string `toml:"database_path"`
}

// FFmpeg contains configuration for the external transcoding tool.
type FFmpeg struct {
	Binary       string  `toml:"binary"`
	ProbeBinary  string  `toml:"probe_binary"`
	BaseTimeout  int     `toml:"base_timeout"`
	VolumeGain   float64 `toml:"volume_gain"`
	VideoCRF     int     `toml:"video_crf"`
	VideoPreset  string  `toml:"video_preset"`
	AudioBitrate string  `toml:"audio_bitrate"`
	CanvasWidth  int     `toml:"canvas_width"`
	CanvasHeight int     `toml:"canvas_height"`
	FrameRate    int     `toml:"frame_rate"`
}

// Segmentation contains the structure inference parameters.
type Segmentation struct {
	ChapterCount      int     `toml:"chapter_count"`
	SceneGapSeconds   float64 `toml:"scene_gap_seconds"`
	SceneMinSentences int     `toml:"scene_min_sentences"`
	SilenceNoiseDB    int     `toml:"silence_noise_db"`
	SilenceMinSeconds float64 `toml:"silence_min_seconds"`
}

// Subtitles contains caption styling configuration.
type Subtitles struct {
	SourceLanguage     string `toml:"source_language"`
	TargetLanguage     string `toml:"target_language"`
	FontFamily         string `toml:"font_family"`
	SourceFontSize     int    `toml:"source_font_size"`
	TargetFontSize     int    `toml:"target_font_size"`
	AnnotationFontSize int    `toml:"annotation_font_size"`
	MaxAnnotations     int    `toml:"max_annotations"`
}

// Extraction contains batch execution configuration.
type Extraction struct {
	Parallelism int  `toml:"parallelism"`
	FailFast    bool `toml:"fail_fast"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for lingclip.
//
// Configuration sections by subsystem:
//   - Paths: media, output, scratch, and database locations
//   - FFmpeg: external tool binaries and fixed encoding parameters
//   - Segmentation: silence detection and chapter/scene heuristics
//   - Subtitles: caption languages, fonts, and sizes
//   - Extraction: batch parallelism and failure policy
//   - Logging: log format and level
type Config struct {
	Paths        Paths        `toml:"paths"`
	FFmpeg       FFmpeg       `toml:"ffmpeg"`
	Segmentation Segmentation `toml:"segmentation"`
	Subtitles    Subtitles    `toml:"subtitles"`
	Extraction   Extraction   `toml:"extraction"`
	Logging      Logging      `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/lingclip/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("lingclip.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	fields := []*string{
		&c.Paths.MediaDir,
		&c.Paths.OutputDir,
		&c.Paths.WorkDir,
		&c.Paths.FontsDir,
		&c.Paths.LogDir,
		&c.Paths.DatabasePath,
	}
	for _, field := range fields {
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}
	c.FFmpeg.Binary = strings.TrimSpace(c.FFmpeg.Binary)
	c.FFmpeg.ProbeBinary = strings.TrimSpace(c.FFmpeg.ProbeBinary)
	c.Subtitles.SourceLanguage = strings.ToLower(strings.TrimSpace(c.Subtitles.SourceLanguage))
	c.Subtitles.TargetLanguage = strings.ToLower(strings.TrimSpace(c.Subtitles.TargetLanguage))
	return nil
}

// EnsureDirectories creates required directories for operation.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Paths.MediaDir,
		c.Paths.OutputDir,
		c.Paths.WorkDir,
		c.Paths.LogDir,
		filepath.Dir(c.Paths.DatabasePath),
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
