package config

const (
	defaultMediaDir          = "~/.local/share/lingclip/media"
	defaultOutputDir         = "~/.local/share/lingclip/output"
	defaultWorkDir           = "~/.local/share/lingclip/work"
	defaultFontsDir          = "~/.local/share/lingclip/fonts"
	defaultLogDir            = "~/.local/share/lingclip/logs"
	defaultDatabasePath      = "~/.local/share/lingclip/lingclip.db"
	defaultBaseTimeout       = 120
	defaultVolumeGain        = 3.0
	defaultVideoCRF          = 23
	defaultVideoPreset       = "fast"
	defaultAudioBitrate      = "128k"
	defaultCanvasWidth       = 1920
	defaultCanvasHeight      = 1080
	defaultFrameRate         = 30
	defaultChapterCount      = 4
	defaultSceneGapSeconds   = 3.0
	defaultSceneMinSentences = 6
	defaultSilenceNoiseDB    = -40
	defaultSilenceMinSeconds = 2.0
	defaultSourceLanguage    = "en"
	defaultTargetLanguage    = "ko"
	defaultFontFamily        = "Noto Sans KR"
	defaultSourceFontSize    = 32
	defaultTargetFontSize    = 24
	defaultAnnotationSize    = 20
	defaultMaxAnnotations    = 2
	defaultParallelism       = 1
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"

	// MaxParallelism caps the extraction worker pool; each worker drives a
	// CPU-heavy transcode, so the ceiling stays small.
	MaxParallelism = 4
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			MediaDir:     defaultMediaDir,
			OutputDir:    defaultOutputDir,
			WorkDir:      defaultWorkDir,
			FontsDir:     defaultFontsDir,
			LogDir:       defaultLogDir,
			DatabasePath: defaultDatabasePath,
		},
		FFmpeg: FFmpeg{
			Binary:       "ffmpeg",
			ProbeBinary:  "ffprobe",
			BaseTimeout:  defaultBaseTimeout,
			VolumeGain:   defaultVolumeGain,
			VideoCRF:     defaultVideoCRF,
			VideoPreset:  defaultVideoPreset,
			AudioBitrate: defaultAudioBitrate,
			CanvasWidth:  defaultCanvasWidth,
			CanvasHeight: defaultCanvasHeight,
			FrameRate:    defaultFrameRate,
		},
		Segmentation: Segmentation{
			ChapterCount:      defaultChapterCount,
			SceneGapSeconds:   defaultSceneGapSeconds,
			SceneMinSentences: defaultSceneMinSentences,
			SilenceNoiseDB:    defaultSilenceNoiseDB,
			SilenceMinSeconds: defaultSilenceMinSeconds,
		},
		Subtitles: Subtitles{
			SourceLanguage:     defaultSourceLanguage,
			TargetLanguage:     defaultTargetLanguage,
			FontFamily:         defaultFontFamily,
			SourceFontSize:     defaultSourceFontSize,
			TargetFontSize:     defaultTargetFontSize,
			AnnotationFontSize: defaultAnnotationSize,
			MaxAnnotations:     defaultMaxAnnotations,
		},
		Extraction: Extraction{
			Parallelism: defaultParallelism,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
