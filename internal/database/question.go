package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/thereayou/party-rooms/internal/models"
	"github.com/thereayou/party-rooms/internal/questions"
	"gorm.io/gorm"
)

// List возвращает тексты вопросов в порядке добавления
func (d *Database) List(ctx context.Context, kind questions.Kind) ([]string, error) {
	var texts []string
	err := d.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("kind = ?", string(kind)).
		Order("id").
		Pluck("text", &texts).Error
	if err != nil {
		return nil, fmt.Errorf("list %s questions: %w", kind, err)
	}
	return texts, nil
}

func (d *Database) Append(ctx context.Context, kind questions.Kind, text string) error {
	q := &models.Question{Kind: string(kind), Text: text}
	if err := d.db.WithContext(ctx).Create(q).Error; err != nil {
		return fmt.Errorf("save %s question: %w", kind, err)
	}
	return nil
}

// Remove удаляет вопрос по позиции в списке
func (d *Database) Remove(ctx context.Context, kind questions.Kind, index int) error {
	if index < 0 {
		return questions.ErrInvalidIndex
	}

	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var q models.Question
		err := tx.Where("kind = ?", string(kind)).
			Order("id").
			Offset(index).
			First(&q).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return questions.ErrInvalidIndex
		}
		if err != nil {
			return fmt.Errorf("find %s question %d: %w", kind, index, err)
		}

		return tx.Delete(&q).Error
	})
}

var _ questions.Store = (*Database)(nil)
