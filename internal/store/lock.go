package store

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"

	"lingclip/internal/services"
)

// MediaLock is an advisory per-media lock. Extraction batches hold it while
// they read the tree; segmentation and manual edits hold it while they write,
// so a batch never sees the structure change underneath it.
type MediaLock struct {
	lock *flock.Flock
}

// AcquireMediaLock takes the advisory lock for one media. It fails
// immediately when another process holds it instead of blocking.
func (s *Store) AcquireMediaLock(mediaID int64) (*MediaLock, error) {
	path := filepath.Join(filepath.Dir(s.path), fmt.Sprintf("media-%d.lock", mediaID))
	lock := flock.New(path)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire media lock: %w", err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrValidation, "store", "lock",
			fmt.Sprintf("media %d is busy in another operation", mediaID), nil)
	}
	return &MediaLock{lock: lock}, nil
}

// Release drops the lock. Safe to call on a nil lock.
func (m *MediaLock) Release() error {
	if m == nil || m.lock == nil {
		return nil
	}
	return m.lock.Unlock()
}
