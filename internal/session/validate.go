package session

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const (
	minLoginPassword    = 4
	minRegisterPassword = 6
	minNameLength       = 2
)

// ValidEmail reports whether s looks like an address. Leading and trailing
// blanks are ignored.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

// ValidName reports whether the trimmed name has at least two characters.
func ValidName(s string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) >= minNameLength
}

func validateLogin(email, password string) error {
	if !ValidEmail(email) {
		return &ValidationError{Field: "email", Message: "Email inválido."}
	}
	if utf8.RuneCountInString(password) < minLoginPassword {
		return &ValidationError{Field: "password", Message: "Contraseña demasiado corta."}
	}
	return nil
}

func validateRegister(email, name, password string) error {
	if !ValidName(name) {
		return &ValidationError{Field: "nombre", Message: "Ingresa tu nombre."}
	}
	if !ValidEmail(email) {
		return &ValidationError{Field: "email", Message: "Email inválido."}
	}
	if utf8.RuneCountInString(password) < minRegisterPassword {
		return &ValidationError{Field: "password", Message: "Usa al menos 6 caracteres."}
	}
	return nil
}
