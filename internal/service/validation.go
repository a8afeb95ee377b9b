package service

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/qs3c/mini_tweeter_server/internal/model"
)

var ErrInvalidInput = errors.New("参数无效")

var (
	ErrInvalidUsername  = fmt.Errorf("%w: 用户名至少3个字符，最多100个字符，且不能包含空格", ErrInvalidInput)
	ErrInvalidName      = fmt.Errorf("%w: 名和姓不能为空且不超过100个字符", ErrInvalidInput)
	ErrInvalidEmail     = fmt.Errorf("%w: 邮箱格式不正确", ErrInvalidInput)
	ErrPasswordTooShort = fmt.Errorf("%w: 密码长度至少为6位", ErrInvalidInput)
	ErrPasswordHasSpace = fmt.Errorf("%w: 密码不能包含空格", ErrInvalidInput)
	ErrEmptyMessage     = fmt.Errorf("%w: 内容不能为空", ErrInvalidInput)
	ErrMessageTooLong   = fmt.Errorf("%w: 内容不能超过280个字符", ErrInvalidInput)
)

const (
	minUsernameLength = 3
	maxNameLength     = 100
	minPasswordLength = 6
)

func hasSpace(s string) bool {
	return strings.ContainsFunc(s, unicode.IsSpace)
}

func validateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < minUsernameLength || n > maxNameLength || hasSpace(username) {
		return ErrInvalidUsername
	}
	return nil
}

func validateNames(first, last string) error {
	if first == "" || last == "" ||
		utf8.RuneCountInString(first) > maxNameLength || utf8.RuneCountInString(last) > maxNameLength {
		return ErrInvalidName
	}
	return nil
}

func validateEmail(email string) error {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 || len(email) > maxNameLength || hasSpace(email) {
		return ErrInvalidEmail
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	if hasSpace(password) {
		return ErrPasswordHasSpace
	}
	return nil
}

// normalizeMessage 去除首尾空白并校验长度
func normalizeMessage(message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrEmptyMessage
	}
	if utf8.RuneCountInString(message) > model.MaxMessageLength {
		return "", ErrMessageTooLong
	}
	return message, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
