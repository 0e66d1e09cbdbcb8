package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"lingclip/internal/config"
	"lingclip/internal/logging"
	"lingclip/internal/media/ffprobe"
	"lingclip/internal/services"
	"lingclip/internal/store"
	"lingclip/internal/structure"
	"lingclip/internal/subtitle"
)

// BatchOptions tunes a batch run.
type BatchOptions struct {
	Tracks      TrackSelection
	AudioOnly   bool
	Parallelism int
	FailFast    bool
}

// Failure identifies one failed unit within a batch.
type Failure struct {
	Order   int
	Name    string
	Message string
}

// BatchReport aggregates a batch run. Results always appear in request
// order, regardless of completion order under parallelism.
type BatchReport struct {
	Kind      BatchKind
	Results   []Result
	Succeeded int
	Failed    int
	Failures  []Failure
}

// unit is one extraction request plus the sentence it came from.
type unit struct {
	order    int
	sentence structure.Sentence
}

// BatchSentences extracts one clip per selected sentence order.
func (o *Orchestrator) BatchSentences(ctx context.Context, mediaID int64, orders []int, opts BatchOptions) (BatchReport, error) {
	return o.runSentenceBatch(ctx, mediaID, BatchSentence, opts, func(tree structure.Tree) ([]structure.Sentence, error) {
		byOrder := make(map[int]structure.Sentence)
		for _, sentence := range tree.Sentences() {
			byOrder[sentence.Order] = sentence
		}
		var selected []structure.Sentence
		for _, order := range orders {
			sentence, ok := byOrder[order]
			if !ok {
				return nil, services.Wrap(services.ErrNotFound, "extract", "select sentences",
					fmt.Sprintf("sentence %d does not exist", order), nil)
			}
			selected = append(selected, sentence)
		}
		return selected, nil
	})
}

// BatchScene extracts every sentence of one scene.
func (o *Orchestrator) BatchScene(ctx context.Context, mediaID int64, chapterIdx, sceneIdx int, opts BatchOptions) (BatchReport, error) {
	return o.runSentenceBatch(ctx, mediaID, BatchScene, opts, func(tree structure.Tree) ([]structure.Sentence, error) {
		if chapterIdx < 0 || chapterIdx >= len(tree.Chapters) {
			return nil, services.Wrap(services.ErrNotFound, "extract", "select scene",
				fmt.Sprintf("chapter %d does not exist", chapterIdx), nil)
		}
		chapter := tree.Chapters[chapterIdx]
		if sceneIdx < 0 || sceneIdx >= len(chapter.Scenes) {
			return nil, services.Wrap(services.ErrNotFound, "extract", "select scene",
				fmt.Sprintf("scene %d.%d does not exist", chapterIdx, sceneIdx), nil)
		}
		return chapter.Scenes[sceneIdx].Sentences, nil
	})
}

// BatchChapter extracts every sentence of one chapter.
func (o *Orchestrator) BatchChapter(ctx context.Context, mediaID int64, chapterIdx int, opts BatchOptions) (BatchReport, error) {
	return o.runSentenceBatch(ctx, mediaID, BatchChapter, opts, func(tree structure.Tree) ([]structure.Sentence, error) {
		if chapterIdx < 0 || chapterIdx >= len(tree.Chapters) {
			return nil, services.Wrap(services.ErrNotFound, "extract", "select chapter",
				fmt.Sprintf("chapter %d does not exist", chapterIdx), nil)
		}
		var sentences []structure.Sentence
		for _, scene := range tree.Chapters[chapterIdx].Scenes {
			sentences = append(sentences, scene.Sentences...)
		}
		return sentences, nil
	})
}

// BatchBookmarks extracts every bookmarked sentence of a media.
func (o *Orchestrator) BatchBookmarks(ctx context.Context, mediaID int64, opts BatchOptions) (BatchReport, error) {
	return o.runSentenceBatch(ctx, mediaID, BatchBookmarks, opts, func(tree structure.Tree) ([]structure.Sentence, error) {
		var marked []structure.Sentence
		for _, sentence := range tree.Sentences() {
			if sentence.Bookmarked {
				marked = append(marked, sentence)
			}
		}
		if len(marked) == 0 {
			return nil, services.Wrap(services.ErrNotFound, "extract", "select bookmarks",
				"media has no bookmarked sentences", nil)
		}
		return marked, nil
	})
}

// ExtractFull produces one clip covering the whole media with a timeline
// caption document that follows every sentence at its real timestamps.
func (o *Orchestrator) ExtractFull(ctx context.Context, mediaID int64, opts BatchOptions) (BatchReport, error) {
	media, err := o.store.GetMedia(ctx, mediaID)
	if err != nil {
		return BatchReport{}, err
	}
	lock, err := o.store.AcquireMediaLock(mediaID)
	if err != nil {
		return BatchReport{}, err
	}
	defer func() { _ = lock.Release() }()

	sentences, err := o.store.ListSentences(ctx, mediaID)
	if err != nil {
		return BatchReport{}, err
	}

	format := formatFor(opts)
	req := Request{
		MediaPath:  media.FilePath,
		MediaKind:  kindOf(media),
		Start:      0,
		Duration:   media.DurationSeconds,
		OutputPath: filepath.Join(o.cfg.Paths.OutputDir, OutputName(BatchFull, 0, effectiveTracks(opts), media.SourceLanguage, media.TargetLanguage, format)),
		Format:     format,
	}

	if format != FormatMP3 && (opts.Tracks.Source || opts.Tracks.Target) {
		captionPath, err := o.writeTimelineCaption(media, sentences, opts.Tracks)
		if err != nil {
			return BatchReport{}, err
		}
		defer os.Remove(captionPath)
		req.CaptionPath = captionPath
	}

	result := o.Extract(ctx, req)
	report := BatchReport{Kind: BatchFull, Results: []Result{result}}
	tally(&report)
	return report, nil
}

// runSentenceBatch loads the tree under the media lock, selects units, and
// drives them through the worker pool.
func (o *Orchestrator) runSentenceBatch(ctx context.Context, mediaID int64, kind BatchKind, opts BatchOptions, selectSentences func(structure.Tree) ([]structure.Sentence, error)) (BatchReport, error) {
	media, err := o.store.GetMedia(ctx, mediaID)
	if err != nil {
		return BatchReport{}, err
	}
	lock, err := o.store.AcquireMediaLock(mediaID)
	if err != nil {
		return BatchReport{}, err
	}
	defer func() { _ = lock.Release() }()

	tree, err := o.store.LoadTree(ctx, mediaID)
	if err != nil {
		return BatchReport{}, err
	}
	sentences, err := selectSentences(tree)
	if err != nil {
		return BatchReport{}, err
	}
	if len(sentences) == 0 {
		return BatchReport{}, services.Wrap(services.ErrNotFound, "extract", "select units",
			"selection matched no sentences", nil)
	}

	units := make([]unit, len(sentences))
	for i, sentence := range sentences {
		units[i] = unit{order: sentence.Order, sentence: sentence}
	}

	report := o.runUnits(ctx, media, kind, units, opts)
	return report, nil
}

func (o *Orchestrator) runUnits(ctx context.Context, media store.Media, kind BatchKind, units []unit, opts BatchOptions) BatchReport {
	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = o.cfg.Extraction.Parallelism
	}
	if parallelism < 1 {
		parallelism = 1
	}
	if parallelism > config.MaxParallelism {
		parallelism = config.MaxParallelism
	}

	o.logger.Info("starting batch",
		logging.String("kind", string(kind)),
		logging.Int("units", len(units)),
		logging.Int("parallelism", parallelism))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]Result, len(units))
	sem := make(chan struct{}, parallelism)
	var wg sync.WaitGroup

	for i, u := range units {
		if runCtx.Err() != nil {
			results[i] = Result{Status: StatusSkipped}
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, u unit) {
			defer wg.Done()
			defer func() { <-sem }()

			if runCtx.Err() != nil {
				results[i] = Result{Status: StatusSkipped}
				return
			}
			results[i] = o.runUnit(runCtx, media, kind, u, opts)
			if results[i].Status != StatusSuccess && results[i].Status != StatusSkipped && opts.FailFast {
				cancel()
			}
		}(i, u)
	}
	wg.Wait()

	report := BatchReport{Kind: kind, Results: results}
	for i := range report.Results {
		if report.Results[i].Status == StatusSkipped && report.Results[i].Request.OutputPath == "" {
			report.Results[i].Request.Order = units[i].order
			report.Results[i].Request.OutputPath = filepath.Join(o.cfg.Paths.OutputDir,
				OutputName(kind, units[i].order, effectiveTracks(opts), media.SourceLanguage, media.TargetLanguage, formatFor(opts)))
		}
	}
	tally(&report)

	o.logger.Info("batch finished",
		logging.String("kind", string(kind)),
		logging.Int("succeeded", report.Succeeded),
		logging.Int("failed", report.Failed))
	return report
}

// runUnit extracts one sentence clip. Its temp caption document is written
// just before the subprocess starts and removed as soon as it finishes, so
// temp usage stays bounded during long batches.
func (o *Orchestrator) runUnit(ctx context.Context, media store.Media, kind BatchKind, u unit, opts BatchOptions) Result {
	format := formatFor(opts)
	tracks := effectiveTracks(opts)
	req := Request{
		Order:      u.order,
		MediaPath:  media.FilePath,
		MediaKind:  kindOf(media),
		Start:      u.sentence.Start,
		Duration:   u.sentence.End - u.sentence.Start,
		OutputPath: filepath.Join(o.cfg.Paths.OutputDir, OutputName(kind, u.order, tracks, media.SourceLanguage, media.TargetLanguage, format)),
		Format:     format,
	}

	if format != FormatMP3 && (tracks.Source || tracks.Target || tracks.Annotations) {
		captionPath, err := o.writeSentenceCaption(u.sentence, req.Duration, tracks)
		if err != nil {
			return Result{Request: req, Status: StatusIOError, Err: err}
		}
		defer os.Remove(captionPath)
		req.CaptionPath = captionPath
	}

	return o.Extract(ctx, req)
}

// writeSentenceCaption composes and writes the per-unit ASS document under a
// collision-proof name in the shared work directory.
func (o *Orchestrator) writeSentenceCaption(sentence structure.Sentence, duration float64, tracks TrackSelection) (string, error) {
	subs := o.cfg.Subtitles
	ff := o.cfg.FFmpeg
	doc := subtitle.Document{
		CanvasWidth:  ff.CanvasWidth,
		CanvasHeight: ff.CanvasHeight,
		Duration:     duration,
	}
	if tracks.Source && sentence.SourceText != "" {
		doc.Tracks = append(doc.Tracks, subtitle.Track{
			Kind:  subtitle.TrackSource,
			Text:  sentence.SourceText,
			Style: subtitle.SourceStyle(subs.FontFamily, subs.SourceFontSize),
		})
	}
	if tracks.Target && sentence.TargetText != "" {
		doc.Tracks = append(doc.Tracks, subtitle.Track{
			Kind:  subtitle.TrackTarget,
			Text:  sentence.TargetText,
			Style: subtitle.TargetStyle(subs.FontFamily, subs.TargetFontSize),
		})
	}
	if tracks.Annotations && len(o.glossary) > 0 {
		matches := subtitle.MatchPhrases(sentence.SourceText, o.glossary, subs.MaxAnnotations)
		if len(matches) > 0 {
			doc.Tracks = append(doc.Tracks, subtitle.Track{
				Kind:  subtitle.TrackAnnotation,
				Text:  subtitle.AnnotationText(matches),
				Style: subtitle.AnnotationStyle(subs.FontFamily, subs.AnnotationFontSize),
			})
		}
	}
	if len(doc.Tracks) == 0 {
		return "", services.Wrap(services.ErrValidation, "extract", "compose caption",
			fmt.Sprintf("sentence %d has no text for the selected tracks", sentence.Order), nil)
	}
	return o.writeCaption(subtitle.Compose(doc))
}

func (o *Orchestrator) writeTimelineCaption(media store.Media, sentences []structure.Sentence, tracks TrackSelection) (string, error) {
	subs := o.cfg.Subtitles
	ff := o.cfg.FFmpeg
	timeline := subtitle.Timeline{
		CanvasWidth:  ff.CanvasWidth,
		CanvasHeight: ff.CanvasHeight,
		SourceStyle:  subtitle.SourceStyle(subs.FontFamily, subs.SourceFontSize),
		TargetStyle:  subtitle.TargetStyle(subs.FontFamily, subs.TargetFontSize),
	}
	for _, sentence := range sentences {
		cue := subtitle.Cue{Start: sentence.Start, End: sentence.End}
		if tracks.Source {
			cue.SourceText = sentence.SourceText
		}
		if tracks.Target {
			cue.TargetText = sentence.TargetText
		}
		timeline.Cues = append(timeline.Cues, cue)
	}
	return o.writeCaption(subtitle.ComposeTimeline(timeline))
}

func (o *Orchestrator) writeCaption(data []byte) (string, error) {
	if err := os.MkdirAll(o.cfg.Paths.WorkDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrIO, "extract", "prepare work dir", "", err)
	}
	path := filepath.Join(o.cfg.Paths.WorkDir, "caption-"+uuid.NewString()+".ass")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", services.Wrap(services.ErrIO, "extract", "write caption", "", err)
	}
	return path, nil
}

func formatFor(opts BatchOptions) Format {
	if opts.AudioOnly {
		return FormatMP3
	}
	return FormatMP4
}

// effectiveTracks drops caption tracks for audio-only output, which never
// burns captions.
func effectiveTracks(opts BatchOptions) TrackSelection {
	if opts.AudioOnly {
		return TrackSelection{}
	}
	return opts.Tracks
}

func kindOf(media store.Media) ffprobe.Kind {
	if media.Kind == "audio" {
		return ffprobe.KindAudio
	}
	return ffprobe.KindVideo
}

func tally(report *BatchReport) {
	for _, result := range report.Results {
		if result.Status == StatusSuccess {
			report.Succeeded++
			continue
		}
		message := services.Message(result.Err)
		if result.Status == StatusSkipped {
			message = "skipped after earlier failure"
		}
		report.Failed++
		report.Failures = append(report.Failures, Failure{
			Order:   result.Request.Order,
			Name:    filepath.Base(result.Request.OutputPath),
			Message: message,
		})
	}
}
