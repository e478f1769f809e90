package services

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	minPasswordLength = 8
	maxUsernameLength = 150
)

var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

// よく使われるパスワードの一部
var commonPasswords = map[string]struct{}{
	"password": {}, "password1": {}, "password123": {}, "12345678": {}, "123456789": {},
	"1234567890": {}, "qwerty123": {}, "qwertyuiop": {}, "iloveyou": {}, "sunshine": {},
	"princess": {}, "football": {}, "baseball": {}, "welcome1": {}, "letmein1": {},
	"abc12345": {}, "admin123": {}, "passw0rd": {}, "trustno1": {}, "11111111": {},
}

// ValidateUsername はユーザー名の形式を検証します。
func ValidateUsername(username string) error {
	if username == "" {
		return invalid("username", "This field is required.")
	}
	if utf8.RuneCountInString(username) > maxUsernameLength {
		return invalid("username", "Ensure this value has at most 150 characters.")
	}
	if !usernamePattern.MatchString(username) {
		return invalid("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	}
	return nil
}

// ValidatePassword はパスワードの強度ポリシーを検証します。
func ValidatePassword(password, username string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return invalid("password", "This password is too short. It must contain at least 8 characters.")
	}
	if isNumeric(password) {
		return invalid("password", "This password is entirely numeric.")
	}
	lower := strings.ToLower(password)
	if _, ok := commonPasswords[lower]; ok {
		return invalid("password", "This password is too common.")
	}
	if u := strings.ToLower(username); len(u) >= 3 && (strings.Contains(lower, u) || strings.Contains(u, lower)) {
		return invalid("password", "The password is too similar to the username.")
	}
	return nil
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}
