package catalog

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"catalog-backend/firebase"
)

// DraftStore manages product drafts in memory
type DraftStore struct {
	drafts  map[uuid.UUID]*Draft
	mu      sync.RWMutex
	storage firebase.StorageClient
	timeout time.Duration
}

func NewDraftStore(storage firebase.StorageClient, uploadTimeout time.Duration) *DraftStore {
	return &DraftStore{
		drafts:  make(map[uuid.UUID]*Draft),
		storage: storage,
		timeout: uploadTimeout,
	}
}

// CleanupOldDrafts removes drafts untouched for 6 hours whose pipelines are
// idle. An abandoned draft with uploads still in flight is left alone until
// they settle.
func (s *DraftStore) CleanupOldDrafts() {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-6 * time.Hour)
	for id, draft := range s.drafts {
		draft.mu.Lock()
		stale := draft.touchedAt.Before(cutoff)
		draft.mu.Unlock()
		if stale && draft.Pipeline.Idle() {
			delete(s.drafts, id)
		}
	}
}

// CreateDraft creates a new empty draft with its own image list and pipeline.
func (s *DraftStore) CreateDraft() *Draft {
	// Clean up old drafts on each new creation
	s.CleanupOldDrafts()

	list := NewImageList()
	draft := &Draft{
		ID:       uuid.New(),
		Images:   list,
		Pipeline: NewPipeline(s.storage, list, s.timeout),
	}
	now := time.Now()
	draft.createdAt = now
	draft.touchedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[draft.ID] = draft
	return draft
}

// GetDraft retrieves a draft by ID and marks it as recently used.
func (s *DraftStore) GetDraft(id uuid.UUID) (*Draft, bool) {
	s.mu.RLock()
	draft, exists := s.drafts[id]
	s.mu.RUnlock()

	if exists {
		draft.touch()
	}
	return draft, exists
}

// DeleteDraft drops a draft, normally after a successful submit.
func (s *DraftStore) DeleteDraft(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, id)
}
