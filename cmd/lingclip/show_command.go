package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lingclip/internal/config"
	"lingclip/internal/language"
	"lingclip/internal/store"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered media",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				items, err := st.ListMedia(cmd.Context())
				if err != nil {
					return err
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No media registered")
					return nil
				}
				rows := make([][]string, 0, len(items))
				for _, media := range items {
					rows = append(rows, []string{
						fmt.Sprintf("%d", media.ID),
						media.Title,
						media.Kind,
						formatClock(media.DurationSeconds),
						fmt.Sprintf("%s -> %s", media.SourceLanguage, media.TargetLanguage),
						yesNo(media.StructureEdited),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Title", "Kind", "Duration", "Languages", "Edited"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft, alignLeft}))
				return nil
			})
		},
	}
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "show <media-id>",
		Short: "Show the chapter and scene structure of a media",
		Args:  cobra.ExactArgs(1),
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
				tree, err := st.LoadTree(cmd.Context(), mediaID)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s (%s, %s, %s -> %s)\n",
					media.Title, media.Kind, formatClock(media.DurationSeconds),
					language.DisplayName(media.SourceLanguage),
					language.DisplayName(media.TargetLanguage))
				if media.StructureEdited {
					fmt.Fprintln(out, "Structure carries manual edits")
				}

				var rows [][]string
				for ci, chapter := range tree.Chapters {
					for si, scene := range chapter.Scenes {
						count := len(scene.Sentences)
						preview := ""
						if count > 0 {
							preview = truncateText(scene.Sentences[0].SourceText, 48)
						}
						rows = append(rows, []string{
							fmt.Sprintf("%d.%d", ci, si),
							formatClock(scene.Start),
							formatClock(scene.End),
							fmt.Sprintf("%d", count),
							preview,
						})
						if !full {
							continue
						}
						for _, sentence := range scene.Sentences {
							marker := " "
							if sentence.Bookmarked {
								marker = "*"
							}
							rows = append(rows, []string{
								fmt.Sprintf("  #%d%s", sentence.Order, marker),
								formatClock(sentence.Start),
								formatClock(sentence.End),
								"",
								truncateText(sentence.SourceText, 48),
							})
						}
					}
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Scene", "Start", "End", "Sentences", "Text"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignLeft}))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&full, "sentences", false, "Show every sentence under its scene")
	return cmd
}
