package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lingclip/internal/config"
	"lingclip/internal/store"
)

func newBookmarkCommand(ctx *commandContext) *cobra.Command {
	var clear bool

	cmd := &cobra.Command{
		Use:   "bookmark <media-id> <sentence>",
		Short: "Bookmark a sentence for later extraction",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mediaID, err := parseMediaID(args[0])
			if err != nil {
				return err
			}
			order, err := parseIndex(args[1], "sentence")
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				if err := st.SetBookmark(cmd.Context(), mediaID, order, !clear); err != nil {
					return err
				}
				verb := "Bookmarked"
				if clear {
					verb = "Unbookmarked"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s sentence %d (media %d)\n", verb, order, mediaID)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&clear, "clear", false, "Remove the bookmark instead of setting it")
	return cmd
}

func newTranslateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "translate <media-id> <sentence> <text>",
		Short: "Store the translation for a sentence",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			mediaID, err := parseMediaID(args[0])
			if err != nil {
				return err
			}
			order, err := parseIndex(args[1], "sentence")
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				if err := st.SetSentenceTarget(cmd.Context(), mediaID, order, args[2]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Stored translation for sentence %d (media %d)\n", order, mediaID)
				return nil
			})
		},
	}
}
