package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"lingclip/internal/config"
	"lingclip/internal/extract"
	"lingclip/internal/store"
	"lingclip/internal/subtitle"
)

type extractFlags struct {
	source      bool
	target      bool
	annotations bool
	audioOnly   bool
	parallel    int
	failFast    bool
	glossary    string
}

func (f *extractFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.source, "source", true, "Burn the source-language caption track")
	cmd.Flags().BoolVar(&f.target, "target", true, "Burn the target-language caption track")
	cmd.Flags().BoolVar(&f.annotations, "annotations", false, "Burn the phrase annotation track")
	cmd.Flags().BoolVar(&f.audioOnly, "audio-only", false, "Extract audio clips without captions")
	cmd.Flags().IntVar(&f.parallel, "parallel", 0, "Concurrent extractions (defaults to configuration)")
	cmd.Flags().BoolVar(&f.failFast, "fail-fast", false, "Stop the batch after the first failure")
	cmd.Flags().StringVar(&f.glossary, "glossary", "", "Phrase glossary file for annotations (phrase<TAB>meaning per line)")
}

func (f *extractFlags) options(cfg *config.Config) extract.BatchOptions {
	failFast := f.failFast || cfg.Extraction.FailFast
	return extract.BatchOptions{
		Tracks: extract.TrackSelection{
			Source:      f.source,
			Target:      f.target,
			Annotations: f.annotations,
		},
		AudioOnly:   f.audioOnly,
		Parallelism: f.parallel,
		FailFast:    failFast,
	}
}

func newExtractCommand(ctx *commandContext) *cobra.Command {
	extractCmd := &cobra.Command{
		Use:   "extract",
		Short: "Cut clips from a media file",
	}

	extractCmd.AddCommand(newExtractSentenceCommand(ctx))
	extractCmd.AddCommand(newExtractSceneCommand(ctx))
	extractCmd.AddCommand(newExtractChapterCommand(ctx))
	extractCmd.AddCommand(newExtractBookmarksCommand(ctx))
	extractCmd.AddCommand(newExtractAllCommand(ctx))

	return extractCmd
}

func newExtractSentenceCommand(ctx *commandContext) *cobra.Command {
	var flags extractFlags
	cmd := &cobra.Command{
		Use:   "sentence <media-id> <order>...",
		Short: "Extract one clip per sentence",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mediaID, err := parseMediaID(args[0])
			if err != nil {
				return err
			}
			orders := make([]int, 0, len(args)-1)
			for _, arg := range args[1:] {
				order, err := parseIndex(arg, "sentence")
				if err != nil {
					return err
				}
				orders = append(orders, order)
			}
			return runBatch(ctx, cmd, &flags, func(o *extract.Orchestrator, opts extract.BatchOptions) (extract.BatchReport, error) {
				return o.BatchSentences(cmd.Context(), mediaID, orders, opts)
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newExtractSceneCommand(ctx *commandContext) *cobra.Command {
	var flags extractFlags
	cmd := &cobra.Command{
		Use:   "scene <media-id> <chapter> <scene>",
		Short: "Extract every sentence of a scene",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			mediaID, chapterIdx, sceneIdx, _, err := parseSceneArgs(args, false)
			if err != nil {
				return err
			}
			return runBatch(ctx, cmd, &flags, func(o *extract.Orchestrator, opts extract.BatchOptions) (extract.BatchReport, error) {
				return o.BatchScene(cmd.Context(), mediaID, chapterIdx, sceneIdx, opts)
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newExtractChapterCommand(ctx *commandContext) *cobra.Command {
	var flags extractFlags
	cmd := &cobra.Command{
		Use:   "chapter <media-id> <chapter>",
		Short: "Extract every sentence of a chapter",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mediaID, err := parseMediaID(args[0])
			if err != nil {
				return err
			}
			chapterIdx, err := parseIndex(args[1], "chapter")
			if err != nil {
				return err
			}
			return runBatch(ctx, cmd, &flags, func(o *extract.Orchestrator, opts extract.BatchOptions) (extract.BatchReport, error) {
				return o.BatchChapter(cmd.Context(), mediaID, chapterIdx, opts)
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newExtractBookmarksCommand(ctx *commandContext) *cobra.Command {
	var flags extractFlags
	cmd := &cobra.Command{
		Use:   "bookmarks <media-id>",
		Short: "Extract every bookmarked sentence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mediaID, err := parseMediaID(args[0])
			if err != nil {
				return err
			}
			return runBatch(ctx, cmd, &flags, func(o *extract.Orchestrator, opts extract.BatchOptions) (extract.BatchReport, error) {
				return o.BatchBookmarks(cmd.Context(), mediaID, opts)
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newExtractAllCommand(ctx *commandContext) *cobra.Command {
	var flags extractFlags
	cmd := &cobra.Command{
		Use:   "all <media-id>",
		Short: "Extract the whole media as one captioned clip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mediaID, err := parseMediaID(args[0])
			if err != nil {
				return err
			}
			return runBatch(ctx, cmd, &flags, func(o *extract.Orchestrator, opts extract.BatchOptions) (extract.BatchReport, error) {
				return o.ExtractFull(cmd.Context(), mediaID, opts)
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func runBatch(ctx *commandContext, cmd *cobra.Command, flags *extractFlags, run func(*extract.Orchestrator, extract.BatchOptions) (extract.BatchReport, error)) error {
	return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
		o := extract.New(cfg, st, ctx.commandLogger())
		if flags.glossary != "" {
			glossary, err := loadGlossary(flags.glossary)
			if err != nil {
				return err
			}
			o.SetGlossary(glossary)
		}

		report, err := run(o, flags.options(cfg))
		if err != nil {
			return err
		}
		printReport(cmd, report)
		if report.Failed > 0 {
			return fmt.Errorf("%d of %d extractions failed", report.Failed, len(report.Results))
		}
		return nil
	})
}

func printReport(cmd *cobra.Command, report extract.BatchReport) {
	rows := make([][]string, 0, len(report.Results))
	for _, result := range report.Results {
		detail := ""
		if result.Err != nil {
			detail = truncateText(strings.ReplaceAll(result.Err.Error(), "\n", " "), 72)
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", result.Request.Order),
			filepath.Base(result.Request.OutputPath),
			string(result.Status),
			result.Elapsed.Truncate(time.Millisecond).String(),
			detail,
		})
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderTable(
		[]string{"Unit", "Output", "Status", "Elapsed", "Detail"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft}))
	fmt.Fprintf(out, "%s batch: %d succeeded, %d failed\n", report.Kind, report.Succeeded, report.Failed)
}

// loadGlossary reads a tab-separated phrase file. Blank lines and lines
// starting with # are skipped.
func loadGlossary(path string) ([]subtitle.Phrase, error) {
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return nil, fmt.Errorf("resolve glossary path: %w", err)
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("read glossary: %w", err)
	}

	var phrases []subtitle.Phrase
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		text, meaning, found := strings.Cut(line, "\t")
		if !found {
			return nil, fmt.Errorf("glossary line %d: expected phrase<TAB>meaning", i+1)
		}
		phrases = append(phrases, subtitle.Phrase{
			Text:    strings.TrimSpace(text),
			Meaning: strings.TrimSpace(meaning),
		})
	}
	if len(phrases) == 0 {
		return nil, fmt.Errorf("glossary %s contains no phrases", expanded)
	}
	return phrases, nil
}
