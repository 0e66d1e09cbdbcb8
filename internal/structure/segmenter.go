package structure

import (
	"sort"

	"lingclip/internal/media/silence"
)

// Params tunes the segmentation heuristics.
type Params struct {
	// ChapterCount is the number of chapters to aim for. The effective count
	// clamps to the available silence boundaries; boundaries are never
	// fabricated.
	ChapterCount int
	// SceneGapSeconds is the inter-sentence gap that opens a new scene.
	SceneGapSeconds float64
	// SceneMinSentences is the minimum sentence count a scene must reach
	// before a gap is allowed to close it.
	SceneMinSentences int
}

// Segment builds a chapter/scene tree from ordered sentences and silence
// intervals. The result is deterministic for identical inputs: silence
// ranking breaks duration ties by earliest start, and every boundary snaps
// to the start time of the sentence that begins the next unit.
func Segment(sentences []Sentence, silences []silence.Interval, total float64, params Params) Tree {
	if len(sentences) == 0 {
		return Tree{Total: total}
	}
	if params.ChapterCount < 1 {
		params.ChapterCount = 1
	}
	if total < sentences[len(sentences)-1].End {
		total = sentences[len(sentences)-1].End
	}

	boundaries := chapterBoundaries(sentences, silences, params.ChapterCount)

	tree := Tree{Total: total}
	chapterStartTime := 0.0
	for i := 0; i <= len(boundaries); i++ {
		startIdx := 0
		if i > 0 {
			startIdx = boundaries[i-1]
		}
		endIdx := len(sentences)
		endTime := total
		if i < len(boundaries) {
			endIdx = boundaries[i]
			endTime = sentences[endIdx].Start
		}

		chapter := Chapter{
			Order: i,
			Start: chapterStartTime,
			End:   endTime,
		}
		chapter.Scenes = splitScenes(sentences[startIdx:endIdx], chapter.Start, chapter.End, params)
		tree.Chapters = append(tree.Chapters, chapter)
		chapterStartTime = endTime
	}
	return tree
}

// chapterBoundaries selects the top-ranked silences and snaps each to the
// index of the sentence that begins the next chapter. Silences that snap to
// the same sentence, or past the last sentence, collapse; the caller gets at
// most ChapterCount-1 distinct interior boundaries.
func chapterBoundaries(sentences []Sentence, silences []silence.Interval, chapterCount int) []int {
	wanted := chapterCount - 1
	if wanted <= 0 || len(silences) == 0 {
		return nil
	}

	ranked := make([]silence.Interval, len(silences))
	copy(ranked, silences)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Duration != ranked[j].Duration {
			return ranked[i].Duration > ranked[j].Duration
		}
		return ranked[i].Start < ranked[j].Start
	})
	if wanted > len(ranked) {
		wanted = len(ranked)
	}
	selected := ranked[:wanted]

	seen := make(map[int]struct{}, len(selected))
	var boundaries []int
	for _, iv := range selected {
		idx := sort.Search(len(sentences), func(i int) bool {
			return sentences[i].Start >= iv.Start
		})
		if idx <= 0 || idx >= len(sentences) {
			continue
		}
		if _, dup := seen[idx]; dup {
			continue
		}
		seen[idx] = struct{}{}
		boundaries = append(boundaries, idx)
	}
	sort.Ints(boundaries)
	return boundaries
}

// splitScenes walks a chapter's sentences and opens a new scene when the gap
// to the next sentence reaches the threshold AND the current scene already
// holds the minimum sentence count. Both conditions are required; the count
// requirement dominates so short chapters stay one scene regardless of gaps.
func splitScenes(sentences []Sentence, chapterStart, chapterEnd float64, params Params) []Scene {
	if len(sentences) == 0 {
		return nil
	}

	var scenes []Scene
	sceneStartIdx := 0
	sceneStartTime := chapterStart

	for i := 0; i < len(sentences)-1; i++ {
		gap := sentences[i+1].Start - sentences[i].End
		count := i - sceneStartIdx + 1
		if gap >= params.SceneGapSeconds && count >= params.SceneMinSentences {
			boundary := sentences[i+1].Start
			scenes = append(scenes, Scene{
				Order:     len(scenes),
				Start:     sceneStartTime,
				End:       boundary,
				Sentences: cloneSentences(sentences[sceneStartIdx : i+1]),
			})
			sceneStartIdx = i + 1
			sceneStartTime = boundary
		}
	}

	scenes = append(scenes, Scene{
		Order:     len(scenes),
		Start:     sceneStartTime,
		End:       chapterEnd,
		Sentences: cloneSentences(sentences[sceneStartIdx:]),
	})
	return scenes
}

func cloneSentences(in []Sentence) []Sentence {
	out := make([]Sentence, len(in))
	copy(out, in)
	return out
}
