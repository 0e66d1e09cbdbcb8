package structure

import (
	"errors"
	"fmt"
)

// Invariant violation codes. Manual edits and tree loads are rejected with
// one of these so callers can surface the specific broken rule.
var (
	ErrEmptyUnit       = errors.New("chapter or scene contains no sentences")
	ErrNotContiguous   = errors.New("unit time ranges are not contiguous")
	ErrBoundaryAlign   = errors.New("boundary does not coincide with a sentence start")
	ErrOrderMismatch   = errors.New("sentence order does not match temporal order")
	ErrInvalidSentence = errors.New("sentence has an invalid time range")
)

// Validate checks the structural invariants: chapters partition [0, Total]
// with scenes partitioning each chapter, no unit is empty, interior
// boundaries are sentence-aligned, and sentence order values form a
// contiguous ascending sequence agreeing with start times.
func Validate(tree Tree) error {
	if len(tree.Chapters) == 0 {
		if tree.SentenceCount() != 0 {
			return fmt.Errorf("%w: sentences without chapters", ErrEmptyUnit)
		}
		return nil
	}

	expectedStart := 0.0
	for ci, chapter := range tree.Chapters {
		if chapter.Start != expectedStart {
			return fmt.Errorf("%w: chapter %d starts at %g, expected %g", ErrNotContiguous, ci, chapter.Start, expectedStart)
		}
		if chapter.End <= chapter.Start {
			return fmt.Errorf("%w: chapter %d has non-positive span", ErrNotContiguous, ci)
		}
		if len(chapter.Scenes) == 0 {
			return fmt.Errorf("%w: chapter %d", ErrEmptyUnit, ci)
		}
		if err := validateScenes(chapter, ci); err != nil {
			return err
		}
		if ci > 0 {
			first := chapter.Scenes[0]
			if len(first.Sentences) == 0 || first.Sentences[0].Start != chapter.Start {
				return fmt.Errorf("%w: chapter %d start %g", ErrBoundaryAlign, ci, chapter.Start)
			}
		}
		expectedStart = chapter.End
	}
	if last := tree.Chapters[len(tree.Chapters)-1]; last.End != tree.Total {
		return fmt.Errorf("%w: last chapter ends at %g, total is %g", ErrNotContiguous, last.End, tree.Total)
	}

	return validateOrdering(tree)
}

func validateScenes(chapter Chapter, ci int) error {
	expectedStart := chapter.Start
	for si, scene := range chapter.Scenes {
		if scene.Start != expectedStart {
			return fmt.Errorf("%w: chapter %d scene %d starts at %g, expected %g", ErrNotContiguous, ci, si, scene.Start, expectedStart)
		}
		if len(scene.Sentences) == 0 {
			return fmt.Errorf("%w: chapter %d scene %d", ErrEmptyUnit, ci, si)
		}
		if si > 0 && scene.Sentences[0].Start != scene.Start {
			return fmt.Errorf("%w: chapter %d scene %d start %g", ErrBoundaryAlign, ci, si, scene.Start)
		}
		expectedStart = scene.End
	}
	if last := chapter.Scenes[len(chapter.Scenes)-1]; last.End != chapter.End {
		return fmt.Errorf("%w: chapter %d last scene ends at %g, chapter ends at %g", ErrNotContiguous, ci, last.End, chapter.End)
	}
	return nil
}

func validateOrdering(tree Tree) error {
	sentences := tree.Sentences()
	previousEnd := -1.0
	for i, sentence := range sentences {
		if sentence.Order != i {
			return fmt.Errorf("%w: position %d holds order %d", ErrOrderMismatch, i, sentence.Order)
		}
		if sentence.Start >= sentence.End {
			return fmt.Errorf("%w: sentence %d spans [%g, %g]", ErrInvalidSentence, i, sentence.Start, sentence.End)
		}
		if sentence.Start < previousEnd {
			return fmt.Errorf("%w: sentence %d starts before its predecessor ends", ErrOrderMismatch, i)
		}
		previousEnd = sentence.Start
	}
	return nil
}
