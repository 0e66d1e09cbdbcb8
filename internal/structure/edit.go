package structure

import (
	"fmt"

	"lingclip/internal/services"
)

// MoveSceneBoundary moves the boundary between scene sceneIdx-1 and scene
// sceneIdx of the given chapter so the scene begins at the sentence with the
// given global order. Sentences between the old and new boundary change
// scenes; the tree is re-validated before the move is accepted.
func MoveSceneBoundary(tree *Tree, chapterIdx, sceneIdx, sentenceOrder int) error {
	chapter, err := chapterAt(tree, chapterIdx)
	if err != nil {
		return err
	}
	if sceneIdx < 1 || sceneIdx >= len(chapter.Scenes) {
		return services.Wrap(services.ErrValidation, "structure", "move boundary",
			fmt.Sprintf("scene %d has no movable start boundary", sceneIdx), nil)
	}

	left := &chapter.Scenes[sceneIdx-1]
	right := &chapter.Scenes[sceneIdx]

	pool := append(cloneSentences(left.Sentences), right.Sentences...)
	split := -1
	for i, sentence := range pool {
		if sentence.Order == sentenceOrder {
			split = i
			break
		}
	}
	if split < 0 {
		return services.Wrap(services.ErrValidation, "structure", "move boundary",
			fmt.Sprintf("sentence %d is not adjacent to the boundary", sentenceOrder), nil)
	}
	if split == 0 {
		return services.Wrap(services.ErrValidation, "structure", "move boundary",
			"move would empty the preceding scene", nil)
	}

	candidate := cloneTree(*tree)
	candidateChapter := &candidate.Chapters[chapterIdx]
	candidateChapter.Scenes[sceneIdx-1].Sentences = cloneSentences(pool[:split])
	candidateChapter.Scenes[sceneIdx-1].End = pool[split].Start
	candidateChapter.Scenes[sceneIdx].Sentences = cloneSentences(pool[split:])
	candidateChapter.Scenes[sceneIdx].Start = pool[split].Start

	return commit(tree, candidate, "move boundary")
}

// MergeScenes merges scene sceneIdx of the given chapter with the scene that
// follows it.
func MergeScenes(tree *Tree, chapterIdx, sceneIdx int) error {
	chapter, err := chapterAt(tree, chapterIdx)
	if err != nil {
		return err
	}
	if sceneIdx < 0 || sceneIdx >= len(chapter.Scenes)-1 {
		return services.Wrap(services.ErrValidation, "structure", "merge scenes",
			fmt.Sprintf("scene %d has no following scene to merge", sceneIdx), nil)
	}

	candidate := cloneTree(*tree)
	scenes := candidate.Chapters[chapterIdx].Scenes
	merged := Scene{
		Start:     scenes[sceneIdx].Start,
		End:       scenes[sceneIdx+1].End,
		Sentences: append(cloneSentences(scenes[sceneIdx].Sentences), scenes[sceneIdx+1].Sentences...),
	}
	candidate.Chapters[chapterIdx].Scenes = append(scenes[:sceneIdx], append([]Scene{merged}, scenes[sceneIdx+2:]...)...)
	candidate.renumber()

	return commit(tree, candidate, "merge scenes")
}

// SplitScene splits scene sceneIdx of the given chapter at the start of the
// sentence with the given global order. Both halves must end up non-empty.
func SplitScene(tree *Tree, chapterIdx, sceneIdx, sentenceOrder int) error {
	chapter, err := chapterAt(tree, chapterIdx)
	if err != nil {
		return err
	}
	if sceneIdx < 0 || sceneIdx >= len(chapter.Scenes) {
		return services.Wrap(services.ErrValidation, "structure", "split scene",
			fmt.Sprintf("chapter %d has no scene %d", chapterIdx, sceneIdx), nil)
	}

	scene := chapter.Scenes[sceneIdx]
	split := -1
	for i, sentence := range scene.Sentences {
		if sentence.Order == sentenceOrder {
			split = i
			break
		}
	}
	if split < 0 {
		return services.Wrap(services.ErrValidation, "structure", "split scene",
			fmt.Sprintf("sentence %d is not in scene %d", sentenceOrder, sceneIdx), nil)
	}
	if split == 0 {
		return services.Wrap(services.ErrValidation, "structure", "split scene",
			"split at the first sentence would empty the scene", nil)
	}

	boundary := scene.Sentences[split].Start
	first := Scene{
		Start:     scene.Start,
		End:       boundary,
		Sentences: cloneSentences(scene.Sentences[:split]),
	}
	second := Scene{
		Start:     boundary,
		End:       scene.End,
		Sentences: cloneSentences(scene.Sentences[split:]),
	}

	candidate := cloneTree(*tree)
	scenes := candidate.Chapters[chapterIdx].Scenes
	candidate.Chapters[chapterIdx].Scenes = append(scenes[:sceneIdx], append([]Scene{first, second}, scenes[sceneIdx+1:]...)...)
	candidate.renumber()

	return commit(tree, candidate, "split scene")
}

func chapterAt(tree *Tree, chapterIdx int) (*Chapter, error) {
	if tree == nil || chapterIdx < 0 || chapterIdx >= len(tree.Chapters) {
		return nil, services.Wrap(services.ErrValidation, "structure", "edit",
			fmt.Sprintf("chapter %d does not exist", chapterIdx), nil)
	}
	return &tree.Chapters[chapterIdx], nil
}

func commit(tree *Tree, candidate Tree, operation string) error {
	if err := Validate(candidate); err != nil {
		return services.Wrap(services.ErrValidation, "structure", operation, "edit rejected", err)
	}
	*tree = candidate
	return nil
}

func cloneTree(in Tree) Tree {
	out := Tree{Total: in.Total, Chapters: make([]Chapter, len(in.Chapters))}
	for ci, chapter := range in.Chapters {
		copied := chapter
		copied.Scenes = make([]Scene, len(chapter.Scenes))
		for si, scene := range chapter.Scenes {
			scene.Sentences = cloneSentences(scene.Sentences)
			copied.Scenes[si] = scene
		}
		out.Chapters[ci] = copied
	}
	return out
}
