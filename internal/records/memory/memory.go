// Package memory is a mutex-guarded in-memory records backend, used for
// local development and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"jiceot/internal/core"
)

type Store struct {
	mu          sync.Mutex
	types       []core.ObligationType
	completions []core.CompletionRecord
	nextTypeID  int64
	nextRecID   int64
}

func New() *Store {
	return &Store{nextTypeID: 1, nextRecID: 1}
}

// Seed inserts types and completions as-is, keeping their ids. Ids handed
// out later continue after the highest seeded one.
func (s *Store) Seed(types []core.ObligationType, completions []core.CompletionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range types {
		s.types = append(s.types, t)
		if t.ID >= s.nextTypeID {
			s.nextTypeID = t.ID + 1
		}
	}
	for _, r := range completions {
		s.completions = append(s.completions, r)
		if r.ID >= s.nextRecID {
			s.nextRecID = r.ID + 1
		}
	}
}

func (s *Store) ListObligationTypes(_ context.Context, kind core.Kind, includeStopped bool) ([]core.ObligationType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.ObligationType
	for _, t := range s.types {
		if t.Kind != kind || (t.Stopped && !includeStopped) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *Store) GetObligationType(_ context.Context, id int64) (core.ObligationType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.types {
		if t.ID == id {
			return t, nil
		}
	}
	return core.ObligationType{}, fmt.Errorf("obligation type %d: %w", id, core.ErrNotFound)
}

func (s *Store) CreateObligationType(_ context.Context, t core.ObligationType) (core.ObligationType, error) {
	if err := t.Validate(); err != nil {
		return core.ObligationType{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.nextTypeID
	s.nextTypeID++
	s.types = append(s.types, t)
	return t, nil
}

func (s *Store) ListCompletionsForPeriod(_ context.Context, typeID int64, p core.Period) ([]core.CompletionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.CompletionRecord
	for _, r := range s.completions {
		if r.TypeID == typeID && r.Period == p {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) ListCompletions(_ context.Context, kind core.Kind, from, to core.Period) ([]core.CompletionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.CompletionRecord
	for _, r := range s.completions {
		if r.Kind != kind || r.Period.Before(from) || r.Period.After(to) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// CreateCompletion stores r. The referenced type must exist and the record
// inherits its kind.
func (s *Store) CreateCompletion(_ context.Context, r core.CompletionRecord) (core.CompletionRecord, error) {
	if err := r.Validate(); err != nil {
		return core.CompletionRecord{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	found := false
	for _, t := range s.types {
		if t.ID == r.TypeID {
			r.Kind = t.Kind
			found = true
			break
		}
	}
	if !found {
		return core.CompletionRecord{}, fmt.Errorf("obligation type %d: %w", r.TypeID, core.ErrNotFound)
	}
	r.ID = s.nextRecID
	s.nextRecID++
	s.completions = append(s.completions, r)
	return r, nil
}
