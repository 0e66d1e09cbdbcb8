package subtitle

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// The sanitizer is an ordered pipeline; each step assumes the previous ones
// already ran. Music spans go first so their inner text never reaches the
// annotation strippers, boilerplate matches whole remaining lines, and
// whitespace collapses last.
type sanitizeStep struct {
	pattern     *regexp.Regexp
	replacement string
}

var sanitizeSteps = []sanitizeStep{
	// Music and lyrics wrapped in note markers.
	{regexp.MustCompile(`♪[^♪]*♪`), ""},
	{regexp.MustCompile(`♫[^♫]*♫`), ""},
	{regexp.MustCompile(`[♪♫][^♪♫]*?[♪♫]`), ""},
	{regexp.MustCompile(`[♪♫]`), ""},

	// Sound effects, descriptions, and stage directions.
	{regexp.MustCompile(`\([^)]*\)`), ""},
	{regexp.MustCompile(`\[[^\]]*\]`), ""},
	{regexp.MustCompile(`\{[^}]*\}`), ""},

	// Speaker labels.
	{regexp.MustCompile(`^[A-Z][A-Z\s]*:`), ""},
	{regexp.MustCompile(`^[A-Z][a-z]+:`), ""},
	{regexp.MustCompile(`\b[A-Z]+:`), ""},

	// Release-group and distribution boilerplate.
	{regexp.MustCompile(`(?i).*Sub Upload Date.*`), ""},
	{regexp.MustCompile(`(?i).*subtitle.*upload.*`), ""},
	{regexp.MustCompile(`(?i).*www\..*`), ""},
	{regexp.MustCompile(`(?i).*\.com.*`), ""},
	{regexp.MustCompile(`(?i).*\.org.*`), ""},
	{regexp.MustCompile(`(?i).*\.net.*`), ""},
	{regexp.MustCompile(`(?i).*release.*info.*`), ""},
	{regexp.MustCompile(`(?i).*addic7ed.*`), ""},
	{regexp.MustCompile(`(?i).*subscene.*`), ""},
	{regexp.MustCompile(`(?i).*opensubtitles.*`), ""},

	// Dialogue dashes: drop a leading dash, turn interior dashes into
	// sentence joins.
	{regexp.MustCompile(`^-\s*[A-Z]+:\s*`), ""},
	{regexp.MustCompile(`\s*-\s*[A-Z]+:\s*`), ". "},
	{regexp.MustCompile(`^-\s*`), ""},
	{regexp.MustCompile(`\s+-\s+`), ". "},

	{regexp.MustCompile(`\s+`), " "},
}

var sanitizeDroppable = map[string]struct{}{
	"": {}, ".": {}, "..": {}, "...": {}, "-": {}, "--": {},
}

// Sanitize cleans one raw transcript sentence. It returns the empty string
// when the cleaned result is too short to keep; callers drop such sentences
// instead of persisting them.
//
// The pipeline runs to a fixpoint: stripping one pattern can expose another
// (a speaker label hidden behind a bracketed description, for example), and
// idempotence requires the result to survive a re-run unchanged.
func Sanitize(raw string) string {
	text := raw
	for range sanitizeSteps {
		next := sanitizePass(text)
		if next == text {
			break
		}
		text = next
	}

	if _, drop := sanitizeDroppable[text]; drop {
		return ""
	}
	if utf8.RuneCountInString(text) < 3 {
		return ""
	}
	return text
}

func sanitizePass(text string) string {
	for _, step := range sanitizeSteps {
		text = step.pattern.ReplaceAllString(text, step.replacement)
	}
	return strings.TrimSpace(text)
}
