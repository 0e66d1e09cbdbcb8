// Package structure infers and maintains the chapter/scene/sentence tree for
// a media item. Chapters come from the longest silences, scenes from
// inter-sentence gaps, and every boundary snaps to a sentence start so the
// tree always partitions the full duration cleanly.
package structure
