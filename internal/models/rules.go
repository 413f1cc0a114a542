package models

import "errors"

var ErrInvalidRules = errors.New("invalid game rules")

// Rules настройки игры, которые задает хост.
// Сервер их не применяет, кроме TimeLimit для таймера хода.
type Rules struct {
	Category  string `json:"category,omitempty"`
	SafeMode  bool   `json:"safeMode"`
	SkipLimit int    `json:"skipLimit,omitempty"`
	// TimeLimit в секундах, 0 = без ограничения
	TimeLimit int `json:"timeLimit,omitempty"`
}

func (r Rules) Validate() error {
	if r.SkipLimit < 0 || r.TimeLimit < 0 {
		return ErrInvalidRules
	}
	if len(r.Category) > 64 {
		return ErrInvalidRules
	}
	return nil
}
