package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/formlens/formlens/internal/survey"
)

// Store is the persistence backend for the cached session collection
// and the original source artifacts. Implementations persist the full
// collection on every Save (last-writer-wins; no per-field merge).
type Store interface {
	Load() ([]Session, error)
	Save(sessions []Session) error
	WriteArtifact(id string, data []byte) error
	ReadArtifact(id string) ([]byte, error)
	RemoveArtifact(id string) error
}

// Registry owns the merged, de-duplicated, visibility-filtered session
// collection. The seed set is a read-only baseline merged over the
// cached set on every List; on an id conflict the seed version wins.
type Registry struct {
	store Store
	seed  []Session

	mu    sync.Mutex
	cache []Session
}

// NewRegistry loads the cached collection from the store and keeps the
// seed as the merge baseline.
func NewRegistry(store Store, seed []Session) (*Registry, error) {
	cache, err := store.Load()
	if err != nil {
		return nil, &PersistenceError{Op: "load sessions", Err: err}
	}
	return &Registry{store: store, seed: seed, cache: cache}, nil
}

// List merges seed and cache, de-duplicating by id with the seed taking
// precedence, and filters to public sessions unless privileged. Seed
// order comes first, then cached sessions in commit order; repeated
// calls are idempotent.
func (r *Registry) List(privileged bool) []Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	seedIDs := make(map[string]struct{}, len(r.seed))
	merged := make([]Session, 0, len(r.seed)+len(r.cache))
	for _, s := range r.seed {
		seedIDs[s.ID] = struct{}{}
		merged = append(merged, s)
	}
	for _, s := range r.cache {
		if _, dup := seedIDs[s.ID]; dup {
			continue
		}
		merged = append(merged, s)
	}

	out := make([]Session, 0, len(merged))
	for _, s := range merged {
		if s.IsPublic || privileged {
			out = append(out, s)
		}
	}
	return out
}

// Get returns the session with the given id from the merged view,
// honoring the same visibility rule as List.
func (r *Registry) Get(id string, privileged bool) (*Session, error) {
	for _, s := range r.List(privileged) {
		if s.ID == id {
			s := s
			return &s, nil
		}
	}
	return nil, &NotFoundError{ID: id}
}

// Commit appends a newly ingested session and persists the collection.
// The session must be complete and self-consistent; it is forced
// private until an explicit Update publishes it. On a persistence
// failure the session stays in the in-memory cache so a retry can
// re-persist it instead of dropping it.
func (r *Registry) Commit(s Session, raw []byte) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("refusing to commit: %w", err)
	}
	s.IsPublic = false
	s.LastUpdated = time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()
	replaced := false
	for i := range r.cache {
		if r.cache[i].ID == s.ID {
			r.cache[i] = s
			replaced = true
			break
		}
	}
	if !replaced {
		r.cache = append(r.cache, s)
	}

	if len(raw) > 0 {
		if err := r.store.WriteArtifact(s.ID, raw); err != nil {
			return &PersistenceError{Op: "write source artifact", Err: err}
		}
	}
	if err := r.store.Save(r.cache); err != nil {
		return &PersistenceError{Op: "save sessions", Err: err}
	}
	return nil
}

// Update applies a partial mutation to a cached session and persists.
// The patch applies all-or-nothing: it is staged on a copy and swapped
// into the cache only once every field validated, so a rejected patch
// leaves the session untouched. Seed sessions are baseline data and
// cannot be mutated; an id found only in the seed reports not-found
// like any unknown id.
func (r *Registry) Update(id string, p Patch) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i := range r.cache {
		if r.cache[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, &NotFoundError{ID: id}
	}

	s := r.cache[idx]
	cols := make([]survey.Column, len(s.Columns))
	copy(cols, s.Columns)
	s.Columns = cols

	if p.IsPublic != nil {
		s.IsPublic = *p.IsPublic
	}
	for colID, visible := range p.ColumnVisibility {
		found := false
		for i := range s.Columns {
			if s.Columns[i].ID == colID {
				s.Columns[i].IsVisualizable = visible
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("session %s has no column %s", id, colID)
		}
	}
	s.LastUpdated = time.Now()
	r.cache[idx] = s

	if err := r.store.Save(r.cache); err != nil {
		return nil, &PersistenceError{Op: "save sessions", Err: err}
	}
	out := s
	return &out, nil
}

// Detach removes a cached session by id and persists the collection.
func (r *Registry) Detach(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i := range r.cache {
		if r.cache[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return &NotFoundError{ID: id}
	}
	r.cache = append(r.cache[:idx], r.cache[idx+1:]...)

	if err := r.store.Save(r.cache); err != nil {
		return &PersistenceError{Op: "save sessions", Err: err}
	}
	// Artifact removal is best-effort: the session record is already gone.
	_ = r.store.RemoveArtifact(id)
	return nil
}

// Artifact returns the original source bytes stored with a session,
// honoring the same visibility rule as List.
func (r *Registry) Artifact(id string, privileged bool) ([]byte, error) {
	if _, err := r.Get(id, privileged); err != nil {
		return nil, err
	}
	b, err := r.store.ReadArtifact(id)
	if err != nil {
		return nil, &PersistenceError{Op: "read source artifact", Err: err}
	}
	return b, nil
}
