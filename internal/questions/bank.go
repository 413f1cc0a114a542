package questions

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

const maxQuestionLength = 500

// Bank держит снимок вопросов в памяти, чтобы комнаты читали его без I/O,
// и пишет изменения в Store.
type Bank struct {
	store Store

	// writeMu сериализует изменения, mu защищает снимок
	writeMu sync.Mutex
	mu      sync.RWMutex
	lists   map[Kind][]string
}

func NewBank(store Store) *Bank {
	return &Bank{
		store: store,
		lists: make(map[Kind][]string),
	}
}

// Load читает списки из хранилища. Если хранилище пустое, заполняет его Defaults.
func (b *Bank) Load(ctx context.Context) error {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	loaded := make(map[Kind][]string, len(Kinds))
	total := 0
	for _, kind := range Kinds {
		list, err := b.store.List(ctx, kind)
		if err != nil {
			return fmt.Errorf("load %s questions: %w", kind, err)
		}
		loaded[kind] = list
		total += len(list)
	}

	if total == 0 {
		for _, kind := range Kinds {
			for _, text := range Defaults[kind] {
				if err := b.store.Append(ctx, kind, text); err != nil {
					return fmt.Errorf("seed %s questions: %w", kind, err)
				}
			}
			loaded[kind] = append([]string(nil), Defaults[kind]...)
		}
		slog.InfoContext(ctx, "question store seeded with defaults")
	}

	b.mu.Lock()
	b.lists = loaded
	b.mu.Unlock()
	return nil
}

// Prompts возвращает копию списка вопросов указанного типа
func (b *Bank) Prompts(kind Kind) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	list := b.lists[kind]
	out := make([]string, len(list))
	copy(out, list)
	return out
}

// All возвращает копии всех списков
func (b *Bank) All() map[Kind][]string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make(map[Kind][]string, len(Kinds))
	for _, kind := range Kinds {
		out[kind] = append(make([]string, 0, len(b.lists[kind])), b.lists[kind]...)
	}
	return out
}

// Add добавляет вопрос в конец списка
func (b *Bank) Add(ctx context.Context, kind Kind, text string) error {
	text = strings.TrimSpace(text)
	if text == "" || len(text) > maxQuestionLength {
		return ErrEmptyQuestion
	}

	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	if err := b.store.Append(ctx, kind, text); err != nil {
		return err
	}

	b.mu.Lock()
	b.lists[kind] = append(b.lists[kind][:len(b.lists[kind]):len(b.lists[kind])], text)
	b.mu.Unlock()
	return nil
}

// Delete удаляет вопрос по индексу
func (b *Bank) Delete(ctx context.Context, kind Kind, index int) error {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	b.mu.RLock()
	n := len(b.lists[kind])
	b.mu.RUnlock()
	if index < 0 || index >= n {
		return ErrInvalidIndex
	}

	if err := b.store.Remove(ctx, kind, index); err != nil {
		return err
	}

	b.mu.Lock()
	list := b.lists[kind]
	b.lists[kind] = append(list[:index:index], list[index+1:]...)
	b.mu.Unlock()
	return nil
}
