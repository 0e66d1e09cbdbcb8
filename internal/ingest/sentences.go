package ingest

import (
	"lingclip/internal/structure"
	"lingclip/internal/subtitle"
)

// BuildSentences turns raw cues into persistable sentence records: each cue
// is sanitized, cues that clean to nothing or carry a degenerate time range
// are dropped, and the survivors are renumbered 0..N-1.
func BuildSentences(cues []Cue) []structure.Sentence {
	var sentences []structure.Sentence
	for _, cue := range cues {
		if cue.Start >= cue.End {
			continue
		}
		text := subtitle.Sanitize(cue.Text)
		if text == "" {
			continue
		}
		sentences = append(sentences, structure.Sentence{
			Order:      len(sentences),
			SourceText: text,
			Start:      cue.Start,
			End:        cue.End,
		})
	}
	return sentences
}

// Translator resolves a source text to its target-language form. The second
// return reports whether a translation exists yet; sentences may stay
// untranslated indefinitely.
type Translator func(sourceText string) (string, bool)

// AttachTranslations fills in target text for every sentence the translator
// can resolve, leaving the rest untouched.
func AttachTranslations(sentences []structure.Sentence, translate Translator) {
	if translate == nil {
		return
	}
	for i := range sentences {
		if sentences[i].TargetText != "" {
			continue
		}
		if target, ok := translate(sentences[i].SourceText); ok {
			sentences[i].TargetText = target
		}
	}
}
