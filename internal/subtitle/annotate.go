package subtitle

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Phrase is one glossary entry: the phrase to look for and its meaning.
type Phrase struct {
	Text    string
	Meaning string
}

// Match records one phrase found in a sentence, with the exact text matched
// and its byte offset.
type Match struct {
	Phrase  Phrase
	Matched string
	Offset  int
}

// MatchPhrases finds glossary phrases in text, case-insensitively and with
// basic morphological variants (plural, past tense, progressive, and an
// interposed negation). Longer phrases are tried first so a short phrase
// never corrupts a longer one's match; the returned matches are ordered by
// occurrence in the text and capped at limit.
func MatchPhrases(text string, glossary []Phrase, limit int) []Match {
	if text == "" || len(glossary) == 0 || limit <= 0 {
		return nil
	}

	ordered := make([]Phrase, len(glossary))
	copy(ordered, glossary)
	sort.SliceStable(ordered, func(i, j int) bool {
		return utf8.RuneCountInString(ordered[i].Text) > utf8.RuneCountInString(ordered[j].Text)
	})

	var matches []Match
	claimed := make([][2]int, 0, limit)
	for _, phrase := range ordered {
		re, err := phrasePattern(phrase.Text)
		if err != nil {
			continue
		}
		loc := findUnclaimed(re, text, claimed)
		if loc == nil {
			continue
		}
		matches = append(matches, Match{
			Phrase:  phrase,
			Matched: text[loc[0]:loc[1]],
			Offset:  loc[0],
		})
		claimed = append(claimed, [2]int{loc[0], loc[1]})
		if len(matches) == limit {
			break
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Offset < matches[j].Offset
	})
	return matches
}

// AnnotationText renders matches as the glossary track's text, one
// "matched : meaning" line per match.
func AnnotationText(matches []Match) string {
	lines := make([]string, 0, len(matches))
	for _, m := range matches {
		lines = append(lines, fmt.Sprintf("%s : %s", m.Matched, m.Phrase.Meaning))
	}
	return strings.Join(lines, "\n")
}

var blankSpanPattern = regexp.MustCompile(`<span class="blank-space"[^>]*>[^<]*</span>`)

// Blank replaces every occurrence of each phrase in text with an
// underscore placeholder span for fill-in-the-blank playback. The
// placeholder is at least three underscores long regardless of phrase
// length. With no phrases configured the text is returned unchanged, and
// spans from an earlier pass are never re-matched, so repeated application
// is stable.
func Blank(text string, phrases []Phrase) string {
	if len(phrases) == 0 || text == "" {
		return text
	}

	var protected []string
	protect := func(s string) string {
		protected = append(protected, s)
		return fmt.Sprintf("\x00%d\x00", len(protected)-1)
	}

	work := blankSpanPattern.ReplaceAllStringFunc(text, protect)

	ordered := make([]Phrase, len(phrases))
	copy(ordered, phrases)
	sort.SliceStable(ordered, func(i, j int) bool {
		return utf8.RuneCountInString(ordered[i].Text) > utf8.RuneCountInString(ordered[j].Text)
	})

	for _, phrase := range ordered {
		re, err := phrasePattern(phrase.Text)
		if err != nil {
			continue
		}
		meaning := phrase.Meaning
		work = re.ReplaceAllStringFunc(work, func(matched string) string {
			underline := strings.Repeat("_", max(utf8.RuneCountInString(matched), 3))
			return protect(fmt.Sprintf(`<span class="blank-space" title="%s">%s</span>`, meaning, underline))
		})
	}

	for i := len(protected) - 1; i >= 0; i-- {
		work = strings.ReplaceAll(work, fmt.Sprintf("\x00%d\x00", i), protected[i])
	}
	return work
}

// phrasePattern compiles a case-insensitive pattern for a phrase. Every word
// accepts common inflection suffixes so phrasal verbs match in inflected form
// ("figured out", "giving up"), and "not" or "n't" may sit between the words.
func phrasePattern(phrase string) (*regexp.Regexp, error) {
	words := strings.Fields(phrase)
	if len(words) == 0 {
		return nil, fmt.Errorf("empty phrase")
	}

	parts := make([]string, len(words))
	for i, word := range words {
		parts[i] = wordPattern(word)
		if i == len(words)-1 && len(words) > 1 {
			parts[i] = `(?:not\s+|n't\s+)?` + parts[i]
		}
	}
	return regexp.Compile(`(?i)\b` + strings.Join(parts, `\s+`) + `\b`)
}

// wordPattern allows -s/-es/-ed/-ing on a word, dropping a trailing e before
// -ed/-ing ("figure" → "figuring") and doubling a final consonant
// ("run" → "running").
func wordPattern(word string) string {
	escaped := regexp.QuoteMeta(word)
	if len(word) <= 2 {
		return escaped + `(?:s|es|ed|ing)?`
	}
	if strings.HasSuffix(word, "e") {
		stem := regexp.QuoteMeta(strings.TrimSuffix(word, "e"))
		return fmt.Sprintf(`(?:%s[sd]?|%s(?:ed|ing))`, escaped, stem)
	}
	last := word[len(word)-1]
	if !strings.ContainsRune("aeiou", rune(last)) && last >= 'a' && last <= 'z' {
		doubled := escaped + regexp.QuoteMeta(string(last))
		return fmt.Sprintf(`(?:%s(?:s|es|ed|ing)?|%s(?:ed|ing))`, escaped, doubled)
	}
	return escaped + `(?:s|es|ed|ing)?`
}

// findUnclaimed returns the first match location that does not overlap an
// already-claimed span.
func findUnclaimed(re *regexp.Regexp, text string, claimed [][2]int) []int {
	for _, loc := range re.FindAllStringIndex(text, -1) {
		overlaps := false
		for _, c := range claimed {
			if loc[0] < c[1] && c[0] < loc[1] {
				overlaps = true
				break
			}
		}
		if !overlaps {
			return loc
		}
	}
	return nil
}
