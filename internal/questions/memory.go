package questions

import (
	"context"
	"sync"
)

// MemoryStore хранит вопросы в памяти процесса
type MemoryStore struct {
	mu    sync.Mutex
	lists map[Kind][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{lists: make(map[Kind][]string)}
}

func (s *MemoryStore) List(_ context.Context, kind Kind) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.lists[kind]))
	copy(out, s.lists[kind])
	return out, nil
}

func (s *MemoryStore) Append(_ context.Context, kind Kind, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lists[kind] = append(s.lists[kind], text)
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, kind Kind, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.lists[kind]
	if index < 0 || index >= len(list) {
		return ErrInvalidIndex
	}
	s.lists[kind] = append(list[:index:index], list[index+1:]...)
	return nil
}

var _ Store = (*MemoryStore)(nil)
