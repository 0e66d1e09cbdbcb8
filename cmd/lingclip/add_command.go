package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"lingclip/internal/config"
	"lingclip/internal/language"
	"lingclip/internal/media/ffprobe"
	"lingclip/internal/store"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var title string
	var sourceLang string
	var targetLang string

	cmd := &cobra.Command{
		Use:   "add <media-file>",
		Short: "Register a media file for clip extraction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve media path: %w", err)
			}
			absPath, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolve media path: %w", err)
			}

			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				probed, err := ffprobe.Inspect(cmd.Context(), cfg.FFmpeg.ProbeBinary, absPath)
				if err != nil {
					return err
				}
				kind, err := probed.DetectKind()
				if err != nil {
					return err
				}
				duration := probed.DurationSeconds()
				if duration <= 0 {
					return fmt.Errorf("media %s reports no duration", absPath)
				}

				source, err := resolveLanguage(sourceLang, cfg.Subtitles.SourceLanguage)
				if err != nil {
					return err
				}
				target, err := resolveLanguage(targetLang, cfg.Subtitles.TargetLanguage)
				if err != nil {
					return err
				}

				name := strings.TrimSpace(title)
				if name == "" {
					base := filepath.Base(absPath)
					name = strings.TrimSuffix(base, filepath.Ext(base))
				}

				media, err := st.CreateMedia(cmd.Context(), store.Media{
					Title:           name,
					FilePath:        absPath,
					Kind:            string(kind),
					DurationSeconds: duration,
					SourceLanguage:  source,
					TargetLanguage:  target,
				})
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Registered media %d: %s\n", media.ID, media.Title)
				fmt.Fprintf(out, "  kind %s, %.1fs, %s -> %s\n",
					media.Kind, media.DurationSeconds,
					language.DisplayName(media.SourceLanguage),
					language.DisplayName(media.TargetLanguage))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Display title (defaults to the file name)")
	cmd.Flags().StringVar(&sourceLang, "source", "", "Source language code (defaults to configuration)")
	cmd.Flags().StringVar(&targetLang, "target", "", "Target language code (defaults to configuration)")
	return cmd
}

func resolveLanguage(flagValue, configured string) (string, error) {
	code := strings.TrimSpace(flagValue)
	if code == "" {
		code = configured
	}
	code = language.ToISO2(code)
	if !language.Known(code) {
		return "", fmt.Errorf("unknown language code %q", code)
	}
	return code, nil
}
