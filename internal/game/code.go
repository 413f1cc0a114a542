package game

import (
	"crypto/rand"
	"strings"
)

const (
	CodeLength   = 6
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	maxCodeAttempts = 64
)

// CodeGenerator выдает кандидатов в коды комнат.
// Уникальность проверяет Registry.
type CodeGenerator interface {
	Generate() string
}

// CodeGeneratorFunc адаптер для функций
type CodeGeneratorFunc func() string

func (f CodeGeneratorFunc) Generate() string { return f() }

// RandomCodes генерирует случайные коды из [A-Z0-9]
type RandomCodes struct{}

func (RandomCodes) Generate() string {
	b := make([]byte, CodeLength)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand unavailable: " + err.Error())
	}
	for i := range b {
		b[i] = codeAlphabet[int(b[i])%len(codeAlphabet)]
	}
	return string(b)
}

// NormalizeCode приводит ввод клиента к каноническому виду
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidCode проверяет формат кода
func ValidCode(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if strings.IndexByte(codeAlphabet, code[i]) < 0 {
			return false
		}
	}
	return true
}
