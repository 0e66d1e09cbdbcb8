package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lingclip/internal/config"
	"lingclip/internal/logging"
	"lingclip/internal/media/silence"
	"lingclip/internal/store"
	"lingclip/internal/structure"
)

func newSegmentCommand(ctx *commandContext) *cobra.Command {
	var chapters int
	var force bool

	cmd := &cobra.Command{
		Use:   "segment <media-id>",
		Short: "Infer chapter and scene structure from silence",
		Long: `Runs silence detection over the media file, ranks the detected silences,
and rebuilds the chapter/scene tree. Bookmarks and translations on the
sentences survive; a manually edited tree is only replaced with --force.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mediaID, err := parseMediaID(args[0])
			if err != nil {
				return err
			}

			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				media, err := st.GetMedia(cmd.Context(), mediaID)
				if err != nil {
					return err
				}
				lock, err := st.AcquireMediaLock(mediaID)
				if err != nil {
					return err
				}
				defer func() { _ = lock.Release() }()

				sentences, err := st.ListSentences(cmd.Context(), mediaID)
				if err != nil {
					return err
				}
				if len(sentences) == 0 {
					return fmt.Errorf("media %d has no sentences; run ingest first", mediaID)
				}

				logger := ctx.commandLogger()
				silences, err := silence.Detect(cmd.Context(), cfg.FFmpeg.Binary, media.FilePath, silence.Options{
					NoiseDB:      cfg.Segmentation.SilenceNoiseDB,
					MinSeconds:   cfg.Segmentation.SilenceMinSeconds,
					TotalSeconds: media.DurationSeconds,
				})
				if err != nil {
					return err
				}
				logger.Info("silence detection complete",
					logging.Int64("media", mediaID),
					logging.Int("silences", len(silences)))

				params := structure.Params{
					ChapterCount:      cfg.Segmentation.ChapterCount,
					SceneGapSeconds:   cfg.Segmentation.SceneGapSeconds,
					SceneMinSentences: cfg.Segmentation.SceneMinSentences,
				}
				if chapters > 0 {
					params.ChapterCount = chapters
				}

				tree := structure.Segment(sentences, silences, media.DurationSeconds, params)
				if err := st.ReplaceTree(cmd.Context(), mediaID, tree, force); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Segmented media %d: %d chapters, %d scenes, %d sentences\n",
					mediaID, len(tree.Chapters), tree.SceneCount(), tree.SentenceCount())
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&chapters, "chapters", 0, "Chapter count override (defaults to configuration)")
	cmd.Flags().BoolVar(&force, "force", false, "Replace a manually edited structure")
	return cmd
}
