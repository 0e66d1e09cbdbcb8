package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lingclip/internal/config"
	"lingclip/internal/ingest"
	"lingclip/internal/store"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <media-id> <transcript.srt>",
		Short: "Load a transcript and replace the media's sentences",
		Long: `Parses an SRT transcript, sanitizes the subtitle text, and stores the
surviving sentences for the media. Existing sentences, structure, and
bookmarks are replaced.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mediaID, err := parseMediaID(args[0])
			if err != nil {
				return err
			}
			transcriptPath, err := config.ExpandPath(args[1])
			if err != nil {
				return fmt.Errorf("resolve transcript path: %w", err)
			}
			data, err := os.ReadFile(transcriptPath)
			if err != nil {
				return fmt.Errorf("read transcript: %w", err)
			}

			cues, err := ingest.ParseSRT(data)
			if err != nil {
				return err
			}
			sentences := ingest.BuildSentences(cues)
			if len(sentences) == 0 {
				return fmt.Errorf("transcript %s produced no usable sentences", transcriptPath)
			}

			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				if _, err := st.GetMedia(cmd.Context(), mediaID); err != nil {
					return err
				}
				if err := st.ReplaceSentences(cmd.Context(), mediaID, sentences); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Ingested %d sentences from %d cues (media %d)\n",
					len(sentences), len(cues), mediaID)
				if dropped := len(cues) - len(sentences); dropped > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "  %d cues dropped by sanitization\n", dropped)
				}
				return nil
			})
		},
	}
	return cmd
}
