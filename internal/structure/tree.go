package structure

// Sentence is one timestamped transcript sentence. Order values form a
// contiguous 0..N-1 sequence matching temporal order within a media.
type Sentence struct {
	ID         int64
	Order      int
	SourceText string
	TargetText string
	Start      float64
	End        float64
	Bookmarked bool
}

// Scene groups consecutive sentences. Interior scene boundaries always
// coincide with the start time of the sentence that begins the scene.
type Scene struct {
	Order     int
	Start     float64
	End       float64
	Sentences []Sentence
}

// Chapter is the coarsest structural unit, bounded by the most significant
// silences.
type Chapter struct {
	Order  int
	Start  float64
	End    float64
	Scenes []Scene
}

// Tree is the full chapter/scene/sentence structure for one media. Chapters
// partition [0, Total]; interior boundaries are sentence-aligned.
type Tree struct {
	Total    float64
	Chapters []Chapter
}

// Sentences returns every sentence in the tree in order.
func (t Tree) Sentences() []Sentence {
	var out []Sentence
	for _, chapter := range t.Chapters {
		for _, scene := range chapter.Scenes {
			out = append(out, scene.Sentences...)
		}
	}
	return out
}

// SentenceCount returns the number of sentences in the tree.
func (t Tree) SentenceCount() int {
	count := 0
	for _, chapter := range t.Chapters {
		for _, scene := range chapter.Scenes {
			count += len(scene.Sentences)
		}
	}
	return count
}

// SceneCount returns the number of scenes in the tree.
func (t Tree) SceneCount() int {
	count := 0
	for _, chapter := range t.Chapters {
		count += len(chapter.Scenes)
	}
	return count
}

// Sentences within a scene define its payload; the unit spans carry the
// boundary facts. renumber restores contiguous order values after an edit.
func (t *Tree) renumber() {
	for ci := range t.Chapters {
		t.Chapters[ci].Order = ci
		for si := range t.Chapters[ci].Scenes {
			t.Chapters[ci].Scenes[si].Order = si
		}
	}
}
