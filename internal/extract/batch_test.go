package extract_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lingclip/internal/config"
	"lingclip/internal/extract"
	"lingclip/internal/store"
	"lingclip/internal/structure"
	"lingclip/internal/subtitle"
	"lingclip/internal/testsupport"
)

// batchFixture registers a media with ten segmented sentences and installs a
// transcoder stub.
func batchFixture(t *testing.T, toolBody string) (*config.Config, *store.Store, store.Media) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	writeTool(t, cfg, toolBody)

	st := testsupport.MustOpenStore(t, cfg)
	mediaPath := filepath.Join(cfg.Paths.MediaDir, "lecture.mp4")
	testsupport.WriteMediaFile(t, mediaPath, 4096)
	media := testsupport.NewMedia(t, st, "Lecture", mediaPath, 100)

	sentences := testsupport.SeedSentences(t, st, media.ID, 10, 10)
	tree := structure.Segment(sentences, nil, 100, structure.Params{
		ChapterCount: 1, SceneGapSeconds: 1.0, SceneMinSentences: 5,
	})
	if err := st.ReplaceTree(context.Background(), media.ID, tree, false); err != nil {
		t.Fatalf("ReplaceTree: %v", err)
	}
	return cfg, st, media
}

func TestBatchSceneExtractsEachSentence(t *testing.T) {
	cfg, st, media := batchFixture(t, succeedBody)
	o := extract.New(cfg, st, nil)

	report, err := o.BatchScene(context.Background(), media.ID, 0, 0, extract.BatchOptions{
		Tracks: extract.TrackSelection{Source: true, Target: true},
	})
	if err != nil {
		t.Fatalf("BatchScene: %v", err)
	}
	if report.Succeeded != 5 || report.Failed != 0 {
		t.Fatalf("expected 5 successes, got %+v", report)
	}
	for i, result := range report.Results {
		if result.Request.Order != i {
			t.Fatalf("results out of request order: %d at position %d", result.Request.Order, i)
		}
		if !strings.HasSuffix(result.Request.OutputPath, "_en_ko.mp4") {
			t.Fatalf("unexpected output name %q", result.Request.OutputPath)
		}
	}
}

func TestBatchCleansTempCaptions(t *testing.T) {
	cfg, st, media := batchFixture(t, succeedBody)
	o := extract.New(cfg, st, nil)

	_, err := o.BatchChapter(context.Background(), media.ID, 0, extract.BatchOptions{
		Tracks: extract.TrackSelection{Source: true},
	})
	if err != nil {
		t.Fatalf("BatchChapter: %v", err)
	}

	leftovers, err := filepath.Glob(filepath.Join(cfg.Paths.WorkDir, "caption-*.ass"))
	if err != nil {
		t.Fatal(err)
	}
	if len(leftovers) != 0 {
		t.Fatalf("temp captions not cleaned: %v", leftovers)
	}
}

// failOn0002Body fails only the unit whose output encodes order 2.
const failOn0002Body = `for last; do :; done
case "$last" in
*0002*) exit 1 ;;
esac
printf data > "$last"
exit 0
`

func TestBatchPartialFailureContinues(t *testing.T) {
	cfg, st, media := batchFixture(t, failOn0002Body)
	o := extract.New(cfg, st, nil)

	report, err := o.BatchScene(context.Background(), media.ID, 0, 0, extract.BatchOptions{
		Tracks: extract.TrackSelection{Source: true},
	})
	if err != nil {
		t.Fatalf("BatchScene: %v", err)
	}
	if report.Succeeded != 4 || report.Failed != 1 {
		t.Fatalf("expected 4/1, got %d/%d", report.Succeeded, report.Failed)
	}
	if len(report.Failures) != 1 || report.Failures[0].Order != 2 {
		t.Fatalf("unexpected failures %+v", report.Failures)
	}
	if report.Failures[0].Message == "" {
		t.Fatal("failure message missing")
	}
}

func TestBatchFailFastSkipsRemaining(t *testing.T) {
	cfg, st, media := batchFixture(t, failOn0002Body)
	o := extract.New(cfg, st, nil)

	report, err := o.BatchScene(context.Background(), media.ID, 0, 0, extract.BatchOptions{
		Tracks:      extract.TrackSelection{Source: true},
		FailFast:    true,
		Parallelism: 1,
	})
	if err != nil {
		t.Fatalf("BatchScene: %v", err)
	}
	if report.Succeeded != 2 {
		t.Fatalf("expected 2 successes before the failure, got %d", report.Succeeded)
	}
	if report.Failed != 3 {
		t.Fatalf("expected failure plus skipped units, got %d", report.Failed)
	}
	skipped := 0
	for _, result := range report.Results {
		if result.Status == extract.StatusSkipped {
			skipped++
		}
	}
	if skipped != 2 {
		t.Fatalf("expected 2 skipped units, got %d", skipped)
	}
}

func TestBatchParallelPreservesRequestOrder(t *testing.T) {
	cfg, st, media := batchFixture(t, succeedBody)
	o := extract.New(cfg, st, nil)

	report, err := o.BatchChapter(context.Background(), media.ID, 0, extract.BatchOptions{
		Tracks:      extract.TrackSelection{Source: true},
		Parallelism: 4,
	})
	if err != nil {
		t.Fatalf("BatchChapter: %v", err)
	}
	if report.Succeeded != 10 {
		t.Fatalf("expected 10 successes, got %+v", report)
	}
	for i, result := range report.Results {
		if result.Request.Order != i {
			t.Fatalf("result %d holds order %d", i, result.Request.Order)
		}
	}
}

func TestBatchBookmarks(t *testing.T) {
	cfg, st, media := batchFixture(t, succeedBody)
	ctx := context.Background()
	for _, order := range []int{1, 6} {
		if err := st.SetBookmark(ctx, media.ID, order, true); err != nil {
			t.Fatalf("SetBookmark: %v", err)
		}
	}

	o := extract.New(cfg, st, nil)
	report, err := o.BatchBookmarks(ctx, media.ID, extract.BatchOptions{
		Tracks: extract.TrackSelection{Source: true},
	})
	if err != nil {
		t.Fatalf("BatchBookmarks: %v", err)
	}
	if report.Succeeded != 2 {
		t.Fatalf("expected 2 successes, got %+v", report)
	}
	if report.Results[0].Request.Order != 1 || report.Results[1].Request.Order != 6 {
		t.Fatalf("unexpected unit orders %+v", report.Results)
	}
}

func TestBatchAudioOnlyNamesAndFormat(t *testing.T) {
	cfg, st, media := batchFixture(t, succeedBody)
	o := extract.New(cfg, st, nil)

	report, err := o.BatchSentences(context.Background(), media.ID, []int{0}, extract.BatchOptions{
		Tracks:    extract.TrackSelection{Source: true},
		AudioOnly: true,
	})
	if err != nil {
		t.Fatalf("BatchSentences: %v", err)
	}
	if report.Succeeded != 1 {
		t.Fatalf("expected success, got %+v", report)
	}
	output := report.Results[0].Request.OutputPath
	if !strings.HasSuffix(output, "sentence_0000_plain.mp3") {
		t.Fatalf("audio-only output should be plain mp3, got %q", output)
	}
}

func TestBatchAnnotationsTrack(t *testing.T) {
	cfg, st, media := batchFixture(t, succeedBody)
	ctx := context.Background()

	sentences, err := st.ListSentences(ctx, media.ID)
	if err != nil {
		t.Fatalf("ListSentences: %v", err)
	}
	sentences[0].SourceText = "Never give up on this"
	if err := st.ReplaceSentences(ctx, media.ID, sentences); err != nil {
		t.Fatalf("ReplaceSentences: %v", err)
	}
	tree := structure.Segment(sentences, nil, 100, structure.Params{
		ChapterCount: 1, SceneGapSeconds: 1.0, SceneMinSentences: 5,
	})
	if err := st.ReplaceTree(ctx, media.ID, tree, false); err != nil {
		t.Fatalf("ReplaceTree: %v", err)
	}

	o := extract.New(cfg, st, nil)
	o.SetGlossary([]subtitle.Phrase{{Text: "give up", Meaning: "포기하다"}})

	report, err := o.BatchSentences(ctx, media.ID, []int{0}, extract.BatchOptions{
		Tracks: extract.TrackSelection{Source: true, Annotations: true},
	})
	if err != nil {
		t.Fatalf("BatchSentences: %v", err)
	}
	if report.Succeeded != 1 {
		t.Fatalf("expected success, got %+v", report)
	}
}

func TestExtractFull(t *testing.T) {
	cfg, st, media := batchFixture(t, succeedBody)
	o := extract.New(cfg, st, nil)

	report, err := o.ExtractFull(context.Background(), media.ID, extract.BatchOptions{
		Tracks: extract.TrackSelection{Source: true, Target: true},
	})
	if err != nil {
		t.Fatalf("ExtractFull: %v", err)
	}
	if report.Succeeded != 1 {
		t.Fatalf("expected one success, got %+v", report)
	}
	if !strings.HasSuffix(report.Results[0].Request.OutputPath, "full_en_ko.mp4") {
		t.Fatalf("unexpected output %q", report.Results[0].Request.OutputPath)
	}
	if _, err := os.Stat(report.Results[0].Request.OutputPath); err != nil {
		t.Fatalf("full output missing: %v", err)
	}
}
