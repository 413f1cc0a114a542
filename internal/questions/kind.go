package questions

import (
	"errors"
	"strings"
)

var (
	ErrUnknownKind   = errors.New("unknown challenge type")
	ErrEmptyQuestion = errors.New("invalid question")
	ErrInvalidIndex  = errors.New("invalid index")
	ErrNoQuestions   = errors.New("no questions available")
)

// Kind тип вызова
type Kind string

const (
	Truth Kind = "truth"
	Dare  Kind = "dare"
)

// Kinds все поддерживаемые типы в порядке вывода
var Kinds = []Kind{Truth, Dare}

// ParseKind разбирает тип из пользовательского ввода
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", ErrUnknownKind
}

func (k Kind) String() string { return string(k) }
