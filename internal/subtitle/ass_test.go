package subtitle

import (
	"strings"
	"testing"
)

func TestComposeDeclaresCanvas(t *testing.T) {
	doc := Document{
		CanvasWidth:  1920,
		CanvasHeight: 1080,
		Duration:     4.5,
		Tracks: []Track{
			{Kind: TrackSource, Text: "Hello there", Style: SourceStyle("Noto Sans KR", 32)},
		},
	}

	out := string(Compose(doc))

	for _, want := range []string{
		"PlayResX: 1920",
		"PlayResY: 1080",
		"WrapStyle: 0",
		"ScriptType: v4.00+",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("document missing %q:\n%s", want, out)
		}
	}
}

func TestComposeOneStyleAndDialoguePerTrack(t *testing.T) {
	doc := Document{
		CanvasWidth:  1920,
		CanvasHeight: 1080,
		Duration:     10,
		Tracks: []Track{
			{Kind: TrackSource, Text: "How are you?", Style: SourceStyle("Noto Sans KR", 32)},
			{Kind: TrackTarget, Text: "어떻게 지내세요?", Style: TargetStyle("Noto Sans KR", 24)},
			{Kind: TrackAnnotation, Text: "how are you : greeting", Style: AnnotationStyle("Noto Sans KR", 20)},
		},
	}

	out := string(Compose(doc))

	if got := strings.Count(out, "\nStyle: "); got != 3 {
		t.Fatalf("expected 3 style lines, got %d", got)
	}
	if got := strings.Count(out, "\nDialogue: "); got != 3 {
		t.Fatalf("expected 3 dialogue lines, got %d", got)
	}
	// Tracks are overlapping entities on separate layers, not concatenated.
	if !strings.Contains(out, "Dialogue: 0,0:00:00.00,0:00:10.00,Source,") {
		t.Fatalf("missing source dialogue:\n%s", out)
	}
	if !strings.Contains(out, "Dialogue: 1,0:00:00.00,0:00:10.00,Target,") {
		t.Fatalf("missing target dialogue:\n%s", out)
	}
	if !strings.Contains(out, "Dialogue: 2,0:00:00.00,0:00:10.00,Annotation,") {
		t.Fatalf("missing annotation dialogue:\n%s", out)
	}
}

func TestComposeDoesNotPreWrap(t *testing.T) {
	long := strings.Repeat("a very long sentence that keeps going ", 10)
	doc := Document{
		CanvasWidth:  1920,
		CanvasHeight: 1080,
		Duration:     5,
		Tracks:       []Track{{Kind: TrackSource, Text: long, Style: SourceStyle("Noto Sans KR", 32)}},
	}

	out := string(Compose(doc))
	if strings.Contains(out, `\N`) {
		t.Fatal("compositor inserted manual line breaks into unbroken text")
	}
}

func TestComposeEscapesNewlines(t *testing.T) {
	doc := Document{
		CanvasWidth:  1920,
		CanvasHeight: 1080,
		Duration:     5,
		Tracks:       []Track{{Kind: TrackSource, Text: "line one\nline two", Style: SourceStyle("Noto Sans KR", 32)}},
	}

	out := string(Compose(doc))
	if !strings.Contains(out, `line one\Nline two`) {
		t.Fatalf("literal newline not converted:\n%s", out)
	}
}

func TestAnnotationStyleIsTopAligned(t *testing.T) {
	style := AnnotationStyle("Noto Sans KR", 20)
	if style.Alignment != 8 {
		t.Fatalf("annotation alignment = %d, want top-center 8", style.Alignment)
	}
	if style.PrimaryColor == SourceStyle("Noto Sans KR", 32).PrimaryColor {
		t.Fatal("annotation track should be visually distinct from the source track")
	}
}

func TestFormatTime(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "0:00:00.00"},
		{7.25, "0:00:07.25"},
		{61.5, "0:01:01.50"},
		{3671.04, "1:01:11.04"},
		{-2, "0:00:00.00"},
	}
	for _, tc := range cases {
		if got := formatTime(tc.seconds); got != tc.want {
			t.Errorf("formatTime(%g) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func TestComposeTimeline(t *testing.T) {
	timeline := Timeline{
		CanvasWidth:  1920,
		CanvasHeight: 1080,
		SourceStyle:  SourceStyle("Noto Sans KR", 32),
		TargetStyle:  TargetStyle("Noto Sans KR", 24),
		Cues: []Cue{
			{Start: 0, End: 2.5, SourceText: "First.", TargetText: "첫 번째."},
			{Start: 3, End: 5, SourceText: "Second."},
		},
	}

	out := string(ComposeTimeline(timeline))

	if got := strings.Count(out, "\nDialogue: "); got != 3 {
		t.Fatalf("expected 3 dialogue lines, got %d:\n%s", got, out)
	}
	if !strings.Contains(out, "Dialogue: 0,0:00:00.00,0:00:02.50,Source,,0,0,0,,First.") {
		t.Fatalf("missing first source cue:\n%s", out)
	}
	if !strings.Contains(out, "Dialogue: 1,0:00:00.00,0:00:02.50,Target,,0,0,0,,첫 번째.") {
		t.Fatalf("missing first target cue:\n%s", out)
	}
	if strings.Contains(out, "0:00:03.00,0:00:05.00,Target") {
		t.Fatal("cue without target text must not produce a target dialogue")
	}
	if !strings.Contains(out, "PlayResX: 1920") {
		t.Fatal("timeline document must declare the reference canvas")
	}
}
