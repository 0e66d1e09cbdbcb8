package structure

import (
	"reflect"
	"testing"

	"lingclip/internal/media/silence"
)

func defaultParams() Params {
	return Params{ChapterCount: 1, SceneGapSeconds: 3.0, SceneMinSentences: 6}
}

func sentenceRow(order int, start, end float64) Sentence {
	return Sentence{Order: order, SourceText: "text", Start: start, End: end}
}

func TestSegmentShortChapterStaysOneScene(t *testing.T) {
	// Five sentences with a fifteen-second pause in the middle. The pause
	// alone must not open a scene while the minimum sentence count is unmet.
	sentences := []Sentence{
		sentenceRow(0, 0, 1),
		sentenceRow(1, 1.5, 2.5),
		sentenceRow(2, 3, 4),
		sentenceRow(3, 19, 20),
		sentenceRow(4, 21, 22),
	}

	tree := Segment(sentences, nil, 22, defaultParams())

	if len(tree.Chapters) != 1 {
		t.Fatalf("expected 1 chapter, got %d", len(tree.Chapters))
	}
	scenes := tree.Chapters[0].Scenes
	if len(scenes) != 1 {
		t.Fatalf("expected 1 scene, got %d", len(scenes))
	}
	if scenes[0].Start != 0 || scenes[0].End != 22 {
		t.Fatalf("expected scene to span [0, 22], got [%g, %g]", scenes[0].Start, scenes[0].End)
	}
	if len(scenes[0].Sentences) != 5 {
		t.Fatalf("expected all 5 sentences in the scene, got %d", len(scenes[0].Sentences))
	}
}

func TestSegmentSplitsSceneOnGapWithEnoughSentences(t *testing.T) {
	// Twelve sentences, one four-second gap after the sixth. The scene must
	// split exactly at the seventh sentence's start.
	var sentences []Sentence
	for i := 0; i < 6; i++ {
		start := float64(i) * 2
		sentences = append(sentences, sentenceRow(i, start, start+1))
	}
	for i := 6; i < 12; i++ {
		start := 15 + float64(i-6)*2
		sentences = append(sentences, sentenceRow(i, start, start+1))
	}

	tree := Segment(sentences, nil, 26, defaultParams())

	scenes := tree.Chapters[0].Scenes
	if len(scenes) != 2 {
		t.Fatalf("expected 2 scenes, got %d", len(scenes))
	}
	if scenes[0].End != 15 || scenes[1].Start != 15 {
		t.Fatalf("expected split at 15, got end=%g start=%g", scenes[0].End, scenes[1].Start)
	}
	if len(scenes[0].Sentences) != 6 || len(scenes[1].Sentences) != 6 {
		t.Fatalf("expected 6+6 sentences, got %d+%d", len(scenes[0].Sentences), len(scenes[1].Sentences))
	}
	if scenes[1].Sentences[0].Order != 6 {
		t.Fatalf("second scene should begin at sentence 6, got %d", scenes[1].Sentences[0].Order)
	}
}

func TestSegmentChapterCountClampsToSilences(t *testing.T) {
	// Four chapters requested but only two usable silences exist, so the
	// result holds three chapters and no fabricated boundaries.
	var sentences []Sentence
	for i := 0; i < 9; i++ {
		start := float64(i) * 10
		sentences = append(sentences, sentenceRow(i, start, start+8))
	}
	silences := []silence.Interval{
		{Start: 28.2, End: 29.8, Duration: 1.6},
		{Start: 58.0, End: 59.5, Duration: 1.5},
	}

	params := defaultParams()
	params.ChapterCount = 4
	tree := Segment(sentences, silences, 90, params)

	if len(tree.Chapters) != 3 {
		t.Fatalf("expected clamp to 3 chapters, got %d", len(tree.Chapters))
	}
	wantBounds := [][2]float64{{0, 30}, {30, 60}, {60, 90}}
	for i, want := range wantBounds {
		chapter := tree.Chapters[i]
		if chapter.Start != want[0] || chapter.End != want[1] {
			t.Fatalf("chapter %d spans [%g, %g], want [%g, %g]", i, chapter.Start, chapter.End, want[0], want[1])
		}
	}
}

func TestSegmentRanksSilencesByDurationThenStart(t *testing.T) {
	var sentences []Sentence
	for i := 0; i < 8; i++ {
		start := float64(i) * 10
		sentences = append(sentences, sentenceRow(i, start, start+8))
	}
	// The longest silence sits late; with two chapters requested only the
	// longest one becomes a boundary even though an earlier one exists.
	silences := []silence.Interval{
		{Start: 18.5, End: 19.5, Duration: 1.0},
		{Start: 48.0, End: 51.0, Duration: 3.0},
	}

	params := defaultParams()
	params.ChapterCount = 2
	tree := Segment(sentences, silences, 80, params)

	if len(tree.Chapters) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(tree.Chapters))
	}
	if tree.Chapters[1].Start != 50 {
		t.Fatalf("boundary should snap to sentence start 50, got %g", tree.Chapters[1].Start)
	}
}

func TestSegmentCollapsesDuplicateBoundaries(t *testing.T) {
	var sentences []Sentence
	for i := 0; i < 6; i++ {
		start := float64(i) * 10
		sentences = append(sentences, sentenceRow(i, start, start+8))
	}
	// Both silences snap to the same sentence, so only one boundary survives.
	silences := []silence.Interval{
		{Start: 28.1, End: 29.0, Duration: 0.9},
		{Start: 29.2, End: 29.9, Duration: 0.7},
	}

	params := defaultParams()
	params.ChapterCount = 3
	tree := Segment(sentences, silences, 60, params)

	if len(tree.Chapters) != 2 {
		t.Fatalf("expected duplicates to collapse into 2 chapters, got %d", len(tree.Chapters))
	}
}

func TestSegmentIgnoresSilencesOutsideSentenceRange(t *testing.T) {
	sentences := []Sentence{
		sentenceRow(0, 5, 8),
		sentenceRow(1, 10, 13),
	}
	// A silence before the first sentence and one after the last cannot
	// create boundaries.
	silences := []silence.Interval{
		{Start: 0, End: 4, Duration: 4},
		{Start: 14, End: 20, Duration: 6},
	}

	params := defaultParams()
	params.ChapterCount = 3
	tree := Segment(sentences, silences, 20, params)

	if len(tree.Chapters) != 1 {
		t.Fatalf("expected 1 chapter, got %d", len(tree.Chapters))
	}
}

func TestSegmentEmptyInput(t *testing.T) {
	tree := Segment(nil, nil, 120, defaultParams())
	if len(tree.Chapters) != 0 || tree.Total != 120 {
		t.Fatalf("expected empty tree with total 120, got %+v", tree)
	}
}

func TestSegmentDeterministic(t *testing.T) {
	var sentences []Sentence
	for i := 0; i < 20; i++ {
		start := float64(i) * 7
		sentences = append(sentences, sentenceRow(i, start, start+5))
	}
	silences := []silence.Interval{
		{Start: 33.5, End: 35.0, Duration: 1.5},
		{Start: 68.0, End: 69.5, Duration: 1.5},
		{Start: 103.0, End: 104.0, Duration: 1.0},
	}

	params := defaultParams()
	params.ChapterCount = 4
	first := Segment(sentences, silences, 140, params)
	second := Segment(sentences, silences, 140, params)

	if !reflect.DeepEqual(first, second) {
		t.Fatal("segmentation is not deterministic for identical inputs")
	}
}

func TestSegmentResultValidates(t *testing.T) {
	var sentences []Sentence
	for i := 0; i < 15; i++ {
		start := float64(i) * 10
		sentences = append(sentences, sentenceRow(i, start, start+6))
	}
	silences := []silence.Interval{
		{Start: 47.0, End: 49.5, Duration: 2.5},
		{Start: 97.0, End: 99.0, Duration: 2.0},
	}

	params := defaultParams()
	params.ChapterCount = 3
	params.SceneMinSentences = 3
	tree := Segment(sentences, silences, 150, params)

	if err := Validate(tree); err != nil {
		t.Fatalf("segmented tree failed validation: %v", err)
	}
	for i, chapter := range tree.Chapters {
		if i == 0 {
			continue
		}
		if first := chapter.Scenes[0].Sentences[0]; first.Start != chapter.Start {
			t.Fatalf("chapter %d boundary %g is not sentence-aligned", i, chapter.Start)
		}
	}
}
