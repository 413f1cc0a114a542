package services

import (
	"context"

	"github.com/thereayou/party-rooms/internal/questions"
)

// QuestionService управление списками вопросов для REST
type QuestionService interface {
	All() map[questions.Kind][]string
	Add(ctx context.Context, kind questions.Kind, text string) error
	Delete(ctx context.Context, kind questions.Kind, index int) error
}

var _ QuestionService = (*questions.Bank)(nil)
