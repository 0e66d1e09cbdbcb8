package subtitle

import (
	"fmt"
	"strings"
)

// TrackKind identifies a caption track's role within a document.
type TrackKind string

const (
	TrackSource     TrackKind = "source"
	TrackTarget     TrackKind = "target"
	TrackAnnotation TrackKind = "annotation"
)

// Style holds one ASS style block. Colors use the &HBBGGRR form, alignment
// uses the numpad codes (1-3 bottom, 4-6 middle, 7-9 top).
type Style struct {
	Name         string
	FontFamily   string
	FontSize     int
	PrimaryColor string
	OutlineColor string
	BackColor    string
	Bold         bool
	MarginLeft   int
	MarginRight  int
	MarginVert   int
	Alignment    int
}

// Track is one rendered caption track: its text spans the whole clip.
type Track struct {
	Kind  TrackKind
	Text  string
	Style Style
}

// Document describes a complete single-clip caption document. CanvasWidth and
// CanvasHeight must equal the real output resolution; without the PlayRes
// declaration renderers fall back to a tiny internal canvas and scale every
// font size up several times.
type Document struct {
	CanvasWidth  int
	CanvasHeight int
	Duration     float64
	Tracks       []Track
}

// SourceStyle returns the bottom-anchored style for the source language.
func SourceStyle(fontFamily string, size int) Style {
	return Style{
		Name:         "Source",
		FontFamily:   fontFamily,
		FontSize:     size,
		PrimaryColor: "&H00FFFFFF",
		OutlineColor: "&H00000000",
		BackColor:    "&H80000000",
		Bold:         true,
		MarginLeft:   30,
		MarginRight:  30,
		MarginVert:   110,
		Alignment:    2,
	}
}

// TargetStyle returns the style for the target language, sitting below the
// source track.
func TargetStyle(fontFamily string, size int) Style {
	return Style{
		Name:         "Target",
		FontFamily:   fontFamily,
		FontSize:     size,
		PrimaryColor: "&H00FFFFFF",
		OutlineColor: "&H00000000",
		BackColor:    "&H80000000",
		MarginLeft:   30,
		MarginRight:  30,
		MarginVert:   40,
		Alignment:    2,
	}
}

// AnnotationStyle returns the top-anchored style used for the glossary track.
func AnnotationStyle(fontFamily string, size int) Style {
	return Style{
		Name:         "Annotation",
		FontFamily:   fontFamily,
		FontSize:     size,
		PrimaryColor: "&H0000FFFF",
		OutlineColor: "&H00000000",
		BackColor:    "&H80000000",
		MarginLeft:   30,
		MarginRight:  30,
		MarginVert:   30,
		Alignment:    8,
	}
}

// Compose renders the document as ASS bytes. Every document declares
// PlayResX/PlayResY and WrapStyle 0 so the renderer owns line wrapping; the
// text is never pre-wrapped here.
func Compose(doc Document) []byte {
	var b strings.Builder
	writeHeader(&b, doc.CanvasWidth, doc.CanvasHeight)

	for _, track := range doc.Tracks {
		writeStyle(&b, track.Style)
	}

	b.WriteString("\n[Events]\n")
	b.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	end := formatTime(doc.Duration)
	for layer, track := range doc.Tracks {
		fmt.Fprintf(&b, "Dialogue: %d,0:00:00.00,%s,%s,,0,0,0,,%s\n",
			layer, end, track.Style.Name, escapeText(track.Text))
	}
	return []byte(b.String())
}

// Cue is one sentence of a whole-media timeline document.
type Cue struct {
	Start      float64
	End        float64
	SourceText string
	TargetText string
}

// Timeline describes a caption document that follows the full media, one
// dialogue per sentence at its real timestamps.
type Timeline struct {
	CanvasWidth  int
	CanvasHeight int
	SourceStyle  Style
	TargetStyle  Style
	Cues         []Cue
}

// ComposeTimeline renders a whole-media ASS document. Cues with empty text on
// a track simply omit that track's dialogue line.
func ComposeTimeline(t Timeline) []byte {
	var b strings.Builder
	writeHeader(&b, t.CanvasWidth, t.CanvasHeight)
	writeStyle(&b, t.SourceStyle)
	writeStyle(&b, t.TargetStyle)

	b.WriteString("\n[Events]\n")
	b.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	for _, cue := range t.Cues {
		start := formatTime(cue.Start)
		end := formatTime(cue.End)
		if cue.SourceText != "" {
			fmt.Fprintf(&b, "Dialogue: 0,%s,%s,%s,,0,0,0,,%s\n", start, end, t.SourceStyle.Name, escapeText(cue.SourceText))
		}
		if cue.TargetText != "" {
			fmt.Fprintf(&b, "Dialogue: 1,%s,%s,%s,,0,0,0,,%s\n", start, end, t.TargetStyle.Name, escapeText(cue.TargetText))
		}
	}
	return []byte(b.String())
}

func writeHeader(b *strings.Builder, width, height int) {
	b.WriteString("[Script Info]\n")
	b.WriteString("Title: lingclip captions\n")
	b.WriteString("ScriptType: v4.00+\n")
	fmt.Fprintf(b, "PlayResX: %d\n", width)
	fmt.Fprintf(b, "PlayResY: %d\n", height)
	b.WriteString("WrapStyle: 0\n")
	b.WriteString("\n[V4+ Styles]\n")
	b.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
}

func writeStyle(b *strings.Builder, s Style) {
	bold := 0
	if s.Bold {
		bold = 1
	}
	fmt.Fprintf(b, "Style: %s,%s,%d,%s,%s,%s,%s,%d,0,0,0,100,100,0,0,1,2,0,%d,%d,%d,%d,1\n",
		s.Name, s.FontFamily, s.FontSize,
		s.PrimaryColor, s.PrimaryColor, s.OutlineColor, s.BackColor,
		bold, s.Alignment, s.MarginLeft, s.MarginRight, s.MarginVert)
}

// formatTime renders seconds as the H:MM:SS.cc form ASS events use.
func formatTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := int(seconds) / 3600
	minutes := (int(seconds) % 3600) / 60
	secs := seconds - float64(hours*3600+minutes*60)
	return fmt.Sprintf("%d:%02d:%05.2f", hours, minutes, secs)
}

// escapeText converts literal newlines to ASS line breaks. No width-based
// wrapping happens here; WrapStyle 0 leaves that to the renderer.
func escapeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\n", "\\N")
}
