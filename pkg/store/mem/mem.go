// Package mem is an in-memory EventStore used in tests.
package mem

import (
	"sync"

	"relaymere.dev/pkg/encoders/event"
	"relaymere.dev/pkg/encoders/ident"
	"relaymere.dev/pkg/store"
	"relaymere.dev/pkg/utils/context"
)

type Store struct {
	mu           sync.Mutex
	events       map[ident.EventId]*event.E
	contactLists map[ident.Pubkey]*event.E
}

var _ store.I = (*Store)(nil)

func New() *Store {
	return &Store{
		events:       make(map[ident.EventId]*event.E),
		contactLists: make(map[ident.Pubkey]*event.E),
	}
}

func (s *Store) Put(_ context.T, ev *event.E) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *ev
	s.events[ev.Id] = &cp
	return nil
}

func (s *Store) PutContactListIfNewer(_ context.T, ev *event.E) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.contactLists[ev.Pubkey]
	if ok && existing.CreatedAt >= ev.CreatedAt {
		return nil
	}
	cp := *ev
	s.contactLists[ev.Pubkey] = &cp
	return nil
}

func (s *Store) Scan(_ context.T, since, until *int64) ([]*event.E, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*event.E, 0, len(s.events))
	for _, ev := range s.events {
		if since != nil && ev.CreatedAt < *since {
			continue
		}
		if until != nil && ev.CreatedAt > *until {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

func (s *Store) GetContactList(_ context.T, pubkey ident.Pubkey) (*event.E, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.contactLists[pubkey]
	if !ok {
		return nil, nil
	}
	return ev, nil
}

func (s *Store) Close() error { return nil }
