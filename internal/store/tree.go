package store

import (
	"context"
	"database/sql"
	"fmt"

	"lingclip/internal/services"
	"lingclip/internal/structure"
)

// ReplaceTree swaps a media's chapter/scene structure wholesale, as after a
// segmentation run. Sentence rows survive the swap (bookmarks and
// translations persist); only their scene assignment changes. A tree with
// manual edits is protected: replacing it requires force.
func (s *Store) ReplaceTree(ctx context.Context, mediaID int64, tree structure.Tree, force bool) error {
	if err := structure.Validate(tree); err != nil {
		return services.Wrap(services.ErrValidation, "store", "replace tree", "invalid tree", err)
	}
	media, err := s.GetMedia(ctx, mediaID)
	if err != nil {
		return err
	}
	if media.StructureEdited && !force {
		return services.Wrap(services.ErrValidation, "store", "replace tree",
			fmt.Sprintf("media %d has manual structure edits; pass force to overwrite", mediaID), nil)
	}

	if err := s.writeTree(ctx, mediaID, tree); err != nil {
		return err
	}
	return s.setStructureEdited(ctx, mediaID, false)
}

// ApplyEdit persists a manually edited tree and marks the media as edited so
// later segmentation runs cannot silently discard the edit.
func (s *Store) ApplyEdit(ctx context.Context, mediaID int64, tree structure.Tree) error {
	if err := structure.Validate(tree); err != nil {
		return services.Wrap(services.ErrValidation, "store", "apply edit", "invalid tree", err)
	}
	if _, err := s.GetMedia(ctx, mediaID); err != nil {
		return err
	}
	if err := s.writeTree(ctx, mediaID, tree); err != nil {
		return err
	}
	return s.setStructureEdited(ctx, mediaID, true)
}

// LoadTree reconstructs the full structural tree for a media. A media with
// sentences but no chapters yet returns a tree with empty Chapters.
func (s *Store) LoadTree(ctx context.Context, mediaID int64) (structure.Tree, error) {
	ctx = ensureContext(ctx)
	media, err := s.GetMedia(ctx, mediaID)
	if err != nil {
		return structure.Tree{}, err
	}
	tree := structure.Tree{Total: media.DurationSeconds}

	chapterRows, err := s.db.QueryContext(ctx,
		"SELECT id, ord, start_seconds, end_seconds FROM chapters WHERE media_id = ? ORDER BY ord", mediaID)
	if err != nil {
		return structure.Tree{}, fmt.Errorf("load chapters: %w", err)
	}
	defer func() { _ = chapterRows.Close() }()

	chapterIDs := make(map[int64]int)
	for chapterRows.Next() {
		var (
			id      int64
			chapter structure.Chapter
		)
		if err := chapterRows.Scan(&id, &chapter.Order, &chapter.Start, &chapter.End); err != nil {
			return structure.Tree{}, fmt.Errorf("scan chapter: %w", err)
		}
		chapterIDs[id] = len(tree.Chapters)
		tree.Chapters = append(tree.Chapters, chapter)
	}
	if err := chapterRows.Err(); err != nil {
		return structure.Tree{}, fmt.Errorf("iterate chapters: %w", err)
	}

	sceneIDs := make(map[int64][2]int)
	sceneRows, err := s.db.QueryContext(ctx,
		`SELECT sc.id, sc.chapter_id, sc.ord, sc.start_seconds, sc.end_seconds
		 FROM scenes sc JOIN chapters ch ON ch.id = sc.chapter_id
		 WHERE ch.media_id = ? ORDER BY ch.ord, sc.ord`, mediaID)
	if err != nil {
		return structure.Tree{}, fmt.Errorf("load scenes: %w", err)
	}
	defer func() { _ = sceneRows.Close() }()

	for sceneRows.Next() {
		var (
			id, chapterID int64
			scene         structure.Scene
		)
		if err := sceneRows.Scan(&id, &chapterID, &scene.Order, &scene.Start, &scene.End); err != nil {
			return structure.Tree{}, fmt.Errorf("scan scene: %w", err)
		}
		ci, ok := chapterIDs[chapterID]
		if !ok {
			return structure.Tree{}, fmt.Errorf("scene %d references unknown chapter %d", id, chapterID)
		}
		sceneIDs[id] = [2]int{ci, len(tree.Chapters[ci].Scenes)}
		tree.Chapters[ci].Scenes = append(tree.Chapters[ci].Scenes, scene)
	}
	if err := sceneRows.Err(); err != nil {
		return structure.Tree{}, fmt.Errorf("iterate scenes: %w", err)
	}

	sentenceRows, err := s.db.QueryContext(ctx,
		"SELECT scene_id, "+sentenceColumns+" FROM sentences WHERE media_id = ? ORDER BY ord", mediaID)
	if err != nil {
		return structure.Tree{}, fmt.Errorf("load sentences: %w", err)
	}
	defer func() { _ = sentenceRows.Close() }()

	for sentenceRows.Next() {
		var (
			sceneID    sql.NullInt64
			sentence   structure.Sentence
			bookmarked int
		)
		err := sentenceRows.Scan(&sceneID, &sentence.ID, &sentence.Order,
			&sentence.SourceText, &sentence.TargetText,
			&sentence.Start, &sentence.End, &bookmarked)
		if err != nil {
			return structure.Tree{}, fmt.Errorf("scan sentence: %w", err)
		}
		sentence.Bookmarked = bookmarked != 0
		if !sceneID.Valid {
			continue
		}
		pos, ok := sceneIDs[sceneID.Int64]
		if !ok {
			return structure.Tree{}, fmt.Errorf("sentence %d references unknown scene %d", sentence.ID, sceneID.Int64)
		}
		scene := &tree.Chapters[pos[0]].Scenes[pos[1]]
		scene.Sentences = append(scene.Sentences, sentence)
	}
	if err := sentenceRows.Err(); err != nil {
		return structure.Tree{}, fmt.Errorf("iterate sentences: %w", err)
	}

	return tree, nil
}

// writeTree replaces the chapters and scenes of a media and points the
// existing sentence rows at their new scenes.
func (s *Store) writeTree(ctx context.Context, mediaID int64, tree structure.Tree) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM chapters WHERE media_id = ?", mediaID); err != nil {
			return fmt.Errorf("clear chapters: %w", err)
		}

		for _, chapter := range tree.Chapters {
			res, err := tx.ExecContext(ctx,
				"INSERT INTO chapters (media_id, ord, start_seconds, end_seconds) VALUES (?, ?, ?, ?)",
				mediaID, chapter.Order, chapter.Start, chapter.End)
			if err != nil {
				return fmt.Errorf("insert chapter %d: %w", chapter.Order, err)
			}
			chapterID, err := res.LastInsertId()
			if err != nil {
				return fmt.Errorf("chapter insert id: %w", err)
			}

			for _, scene := range chapter.Scenes {
				res, err := tx.ExecContext(ctx,
					"INSERT INTO scenes (chapter_id, ord, start_seconds, end_seconds) VALUES (?, ?, ?, ?)",
					chapterID, scene.Order, scene.Start, scene.End)
				if err != nil {
					return fmt.Errorf("insert scene %d.%d: %w", chapter.Order, scene.Order, err)
				}
				sceneID, err := res.LastInsertId()
				if err != nil {
					return fmt.Errorf("scene insert id: %w", err)
				}

				for _, sentence := range scene.Sentences {
					assign, err := tx.ExecContext(ctx,
						"UPDATE sentences SET scene_id = ? WHERE media_id = ? AND ord = ?",
						sceneID, mediaID, sentence.Order)
					if err != nil {
						return fmt.Errorf("assign sentence %d: %w", sentence.Order, err)
					}
					affected, err := assign.RowsAffected()
					if err != nil {
						return fmt.Errorf("assign sentence %d: %w", sentence.Order, err)
					}
					if affected == 0 {
						return services.Wrap(services.ErrValidation, "store", "write tree",
							fmt.Sprintf("tree references unknown sentence %d", sentence.Order), nil)
					}
				}
			}
		}
		return nil
	})
}

func (s *Store) setStructureEdited(ctx context.Context, mediaID int64, edited bool) error {
	res, err := s.execWithRetry(ctx,
		"UPDATE media SET structure_edited = ?, updated_at = datetime('now') WHERE id = ?",
		boolToInt(edited), mediaID)
	if err != nil {
		return fmt.Errorf("set structure_edited: %w", err)
	}
	return requireRowAffected(res, "store", "set structure_edited", mediaID)
}
