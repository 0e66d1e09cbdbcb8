package extract

import "fmt"

// BatchKind identifies the unit granularity of an extraction batch.
type BatchKind string

const (
	BatchSentence  BatchKind = "sentence"
	BatchScene     BatchKind = "scene"
	BatchChapter   BatchKind = "chapter"
	BatchBookmarks BatchKind = "bookmarks"
	BatchFull      BatchKind = "full"
)

// TrackSelection names which caption tracks a clip burns in.
type TrackSelection struct {
	Source      bool
	Target      bool
	Annotations bool
}

// Suffix encodes the burned-in language tracks. Annotations ride along with
// whatever languages are shown and do not change the name.
func (t TrackSelection) Suffix(sourceLang, targetLang string) string {
	switch {
	case t.Source && t.Target:
		return "_" + sourceLang + "_" + targetLang
	case t.Source:
		return "_" + sourceLang
	case t.Target:
		return "_" + targetLang
	default:
		return "_plain"
	}
}

// OutputName is a pure function of the batch kind, unit order, and track
// selection. Re-running an identical extraction collides with (and
// overwrites) the previous output, while a different track selection lands
// beside it under a distinct name.
func OutputName(kind BatchKind, order int, tracks TrackSelection, sourceLang, targetLang string, format Format) string {
	ext := "mp4"
	if format == FormatMP3 {
		ext = "mp3"
	}
	if kind == BatchFull {
		return fmt.Sprintf("full%s.%s", tracks.Suffix(sourceLang, targetLang), ext)
	}
	return fmt.Sprintf("%s_%04d%s.%s", kind, order, tracks.Suffix(sourceLang, targetLang), ext)
}
