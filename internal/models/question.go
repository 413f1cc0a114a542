package models

import "time"

// Question хранимый вопрос для режима "правда или действие"
type Question struct {
	ID        uint   `gorm:"primaryKey"`
	Kind      string `gorm:"index;not null;check:kind IN ('truth','dare')"`
	Text      string `gorm:"not null"`
	CreatedAt time.Time
}
