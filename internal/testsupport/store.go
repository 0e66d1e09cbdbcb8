package testsupport

import (
	"context"
	"testing"

	"lingclip/internal/config"
	"lingclip/internal/store"
	"lingclip/internal/structure"
)

// MustOpenStore opens a store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

// NewMedia registers a media record for tests using the provided store.
func NewMedia(t testing.TB, st *store.Store, title, filePath string, duration float64) store.Media {
	t.Helper()

	media, err := st.CreateMedia(context.Background(), store.Media{
		Title:           title,
		FilePath:        filePath,
		Kind:            "video",
		DurationSeconds: duration,
		SourceLanguage:  "en",
		TargetLanguage:  "ko",
	})
	if err != nil {
		t.Fatalf("store.CreateMedia: %v", err)
	}
	return media
}

// SeedSentences persists evenly spaced sentences for a media and returns
// them in order.
func SeedSentences(t testing.TB, st *store.Store, mediaID int64, count int, spacing float64) []structure.Sentence {
	t.Helper()

	sentences := make([]structure.Sentence, count)
	for i := range sentences {
		start := float64(i) * spacing
		sentences[i] = structure.Sentence{
			Order:      i,
			SourceText: "sentence text",
			TargetText: "문장",
			Start:      start,
			End:        start + spacing*0.8,
		}
	}
	if err := st.ReplaceSentences(context.Background(), mediaID, sentences); err != nil {
		t.Fatalf("store.ReplaceSentences: %v", err)
	}
	return sentences
}
