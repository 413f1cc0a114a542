package questions

import "context"

// Store постоянное хранилище списков вопросов.
// Индексы соответствуют порядку добавления.
type Store interface {
	List(ctx context.Context, kind Kind) ([]string, error)
	Append(ctx context.Context, kind Kind, text string) error
	Remove(ctx context.Context, kind Kind, index int) error
}
