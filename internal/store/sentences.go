package store

import (
	"context"
	"database/sql"
	"fmt"

	"lingclip/internal/services"
	"lingclip/internal/structure"
)

const sentenceColumns = "id, ord, source_text, target_text, start_seconds, end_seconds, bookmarked"

// ReplaceSentences swaps the full sentence set of a media. Re-ingestion
// replaces everything, including structure and bookmarks, so it refuses to
// run while the tree carries manual edits.
func (s *Store) ReplaceSentences(ctx context.Context, mediaID int64, sentences []structure.Sentence) error {
	media, err := s.GetMedia(ctx, mediaID)
	if err != nil {
		return err
	}
	if media.StructureEdited {
		return services.Wrap(services.ErrValidation, "store", "replace sentences",
			fmt.Sprintf("media %d has manual structure edits; re-segment with force first", mediaID), nil)
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM chapters WHERE media_id = ?", mediaID); err != nil {
			return fmt.Errorf("clear chapters: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM sentences WHERE media_id = ?", mediaID); err != nil {
			return fmt.Errorf("clear sentences: %w", err)
		}
		for _, sentence := range sentences {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO sentences (media_id, ord, source_text, target_text, start_seconds, end_seconds, bookmarked)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				mediaID, sentence.Order, sentence.SourceText, sentence.TargetText,
				sentence.Start, sentence.End, boolToInt(sentence.Bookmarked))
			if err != nil {
				return fmt.Errorf("insert sentence %d: %w", sentence.Order, err)
			}
		}
		return nil
	})
}

// ListSentences returns a media's sentences in order.
func (s *Store) ListSentences(ctx context.Context, mediaID int64) ([]structure.Sentence, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+sentenceColumns+" FROM sentences WHERE media_id = ? ORDER BY ord", mediaID)
	if err != nil {
		return nil, fmt.Errorf("list sentences: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return collectSentences(rows)
}

// SetSentenceTarget stores the translation for one sentence.
func (s *Store) SetSentenceTarget(ctx context.Context, mediaID int64, order int, target string) error {
	res, err := s.execWithRetry(ctx,
		"UPDATE sentences SET target_text = ? WHERE media_id = ? AND ord = ?",
		target, mediaID, order)
	if err != nil {
		return fmt.Errorf("set sentence target: %w", err)
	}
	return requireRowAffected(res, "store", "set target", mediaID)
}

// SetBookmark marks or unmarks one sentence.
func (s *Store) SetBookmark(ctx context.Context, mediaID int64, order int, bookmarked bool) error {
	res, err := s.execWithRetry(ctx,
		"UPDATE sentences SET bookmarked = ? WHERE media_id = ? AND ord = ?",
		boolToInt(bookmarked), mediaID, order)
	if err != nil {
		return fmt.Errorf("set bookmark: %w", err)
	}
	return requireRowAffected(res, "store", "set bookmark", mediaID)
}

// BookmarkedSentences returns the bookmarked sentences of a media in order.
func (s *Store) BookmarkedSentences(ctx context.Context, mediaID int64) ([]structure.Sentence, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+sentenceColumns+" FROM sentences WHERE media_id = ? AND bookmarked = 1 ORDER BY ord", mediaID)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return collectSentences(rows)
}

func collectSentences(rows *sql.Rows) ([]structure.Sentence, error) {
	var out []structure.Sentence
	for rows.Next() {
		sentence, err := scanSentence(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sentence: %w", err)
		}
		out = append(out, sentence)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sentences: %w", err)
	}
	return out, nil
}

func scanSentence(row rowScanner) (structure.Sentence, error) {
	var (
		sentence   structure.Sentence
		bookmarked int
	)
	err := row.Scan(&sentence.ID, &sentence.Order, &sentence.SourceText,
		&sentence.TargetText, &sentence.Start, &sentence.End, &bookmarked)
	if err != nil {
		return structure.Sentence{}, err
	}
	sentence.Bookmarked = bookmarked != 0
	return sentence, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
