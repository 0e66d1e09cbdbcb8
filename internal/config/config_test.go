package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lingclip/internal/config"
)

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadAppliesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[segmentation]
chapter_count = 7
scene_gap_seconds = 2.5

[subtitles]
source_language = "EN"
target_language = "ja"

[extraction]
parallelism = 3
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be reported as existing")
	}
	if resolved != path {
		t.Fatalf("expected resolved path %q, got %q", path, resolved)
	}
	if cfg.Segmentation.ChapterCount != 7 {
		t.Fatalf("expected chapter_count 7, got %d", cfg.Segmentation.ChapterCount)
	}
	if cfg.Segmentation.SceneGapSeconds != 2.5 {
		t.Fatalf("expected scene_gap_seconds 2.5, got %v", cfg.Segmentation.SceneGapSeconds)
	}
	if cfg.Subtitles.SourceLanguage != "en" {
		t.Fatalf("expected normalized source language, got %q", cfg.Subtitles.SourceLanguage)
	}
	if cfg.Subtitles.TargetLanguage != "ja" {
		t.Fatalf("expected target language ja, got %q", cfg.Subtitles.TargetLanguage)
	}
	if cfg.Extraction.Parallelism != 3 {
		t.Fatalf("expected parallelism 3, got %d", cfg.Extraction.Parallelism)
	}
	// Untouched sections keep defaults.
	if cfg.FFmpeg.BaseTimeout != 120 {
		t.Fatalf("expected default base_timeout, got %d", cfg.FFmpeg.BaseTimeout)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"parallelism too high": "[extraction]\nparallelism = 9\n",
		"bad language":         "[subtitles]\nsource_language = \"xx\"\n",
		"positive noise db":    "[segmentation]\nsilence_noise_db = 10\n",
		"zero chapter count":   "[segmentation]\nchapter_count = 0\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, _, _, err := config.Load(path); err == nil {
				t.Fatalf("expected validation error for %s", name)
			}
		})
	}
}

func TestExpandPathTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	expanded, err := config.ExpandPath("~/clips")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if !strings.HasPrefix(expanded, home) {
		t.Fatalf("expected %q under home %q", expanded, home)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[segmentation]") {
		t.Fatal("expected segmentation section in sample config")
	}
}
