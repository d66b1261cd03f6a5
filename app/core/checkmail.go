package core

import (
	"errors"
	"regexp"
	"unicode"
)

const PasswordMessage = "password needs to be at least 8 characters long and needs at least one lowercase, uppercase and special character as well as one digit"
const PasswordMinLength = 8

var (
	ErrBadFormat = errors.New("invalid email format")

	emailRegexp = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")
)

func ValidateFormat(email string) error {
	if !emailRegexp.MatchString(email) {
		return ErrBadFormat
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < PasswordMinLength {
		return errors.New(PasswordMessage)
	}
	var special, upperCase, lowerCase, number bool
	for _, c := range password {
		switch {
		case unicode.IsNumber(c):
			number = true
		case unicode.IsUpper(c):
			upperCase = true
		case unicode.IsLower(c):
			lowerCase = true
		case unicode.IsSpace(c) || unicode.IsPunct(c) || unicode.IsSymbol(c):
			special = true
		}
	}
	if !special || !upperCase || !lowerCase || !number {
		return errors.New(PasswordMessage)
	}
	return nil
}
