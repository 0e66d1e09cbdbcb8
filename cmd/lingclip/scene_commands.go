package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lingclip/internal/config"
	"lingclip/internal/store"
	"lingclip/internal/structure"
)

func newSceneCommand(ctx *commandContext) *cobra.Command {
	sceneCmd := &cobra.Command{
		Use:   "scene",
		Short: "Adjust scene boundaries by hand",
		Long: `Edits the inferred structure one operation at a time. Every edit is
validated before it is stored, and marks the structure as manually
edited so re-segmentation requires --force.`,
	}

	sceneCmd.AddCommand(newSceneMoveCommand(ctx))
	sceneCmd.AddCommand(newSceneMergeCommand(ctx))
	sceneCmd.AddCommand(newSceneSplitCommand(ctx))

	return sceneCmd
}

// editTree loads the tree under the media lock, applies one mutation, and
// persists the result.
func editTree(ctx *commandContext, cmd *cobra.Command, mediaID int64, mutate func(*structure.Tree) error) error {
	return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
		lock, err := st.AcquireMediaLock(mediaID)
		if err != nil {
			return err
		}
		defer func() { _ = lock.Release() }()

		tree, err := st.LoadTree(cmd.Context(), mediaID)
		if err != nil {
			return err
		}
		if err := mutate(&tree); err != nil {
			return err
		}
		return st.ApplyEdit(cmd.Context(), mediaID, tree)
	})
}

func newSceneMoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "move <media-id> <chapter> <scene> <sentence>",
		Short: "Move a scene's start boundary to a sentence",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			mediaID, chapterIdx, sceneIdx, order, err := parseSceneArgs(args, true)
			if err != nil {
				return err
			}
			if err := editTree(ctx, cmd, mediaID, func(tree *structure.Tree) error {
				return structure.MoveSceneBoundary(tree, chapterIdx, sceneIdx, order)
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Scene %d.%d now starts at sentence %d\n", chapterIdx, sceneIdx, order)
			return nil
		},
	}
}

func newSceneMergeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "merge <media-id> <chapter> <scene>",
		Short: "Merge a scene with the one after it",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			mediaID, chapterIdx, sceneIdx, _, err := parseSceneArgs(args, false)
			if err != nil {
				return err
			}
			if err := editTree(ctx, cmd, mediaID, func(tree *structure.Tree) error {
				return structure.MergeScenes(tree, chapterIdx, sceneIdx)
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Merged scene %d.%d with its successor\n", chapterIdx, sceneIdx)
			return nil
		},
	}
}

func newSceneSplitCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "split <media-id> <chapter> <scene> <sentence>",
		Short: "Split a scene before a sentence",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			mediaID, chapterIdx, sceneIdx, order, err := parseSceneArgs(args, true)
			if err != nil {
				return err
			}
			if err := editTree(ctx, cmd, mediaID, func(tree *structure.Tree) error {
				return structure.SplitScene(tree, chapterIdx, sceneIdx, order)
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Split scene %d.%d before sentence %d\n", chapterIdx, sceneIdx, order)
			return nil
		},
	}
}

func parseSceneArgs(args []string, wantSentence bool) (mediaID int64, chapterIdx, sceneIdx, order int, err error) {
	mediaID, err = parseMediaID(args[0])
	if err != nil {
		return
	}
	chapterIdx, err = parseIndex(args[1], "chapter")
	if err != nil {
		return
	}
	sceneIdx, err = parseIndex(args[2], "scene")
	if err != nil {
		return
	}
	if wantSentence {
		order, err = parseIndex(args[3], "sentence")
	}
	return
}
