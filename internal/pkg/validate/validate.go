// Package validate registers custom binding rules on gin's validator and
// renders validation failures as readable messages.
package validate

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// Register 在 gin 的校验引擎上注册自定义规则，可重复调用
func Register() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = errors.New("unexpected gin validator engine")
			return
		}
		err = v.RegisterValidation("nospace", noSpace)
	})
	return err
}

func noSpace(fl validator.FieldLevel) bool {
	return !strings.ContainsFunc(fl.Field().String(), unicode.IsSpace)
}

// Message 把绑定错误转换为可读消息
func Message(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "请求格式错误"
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return strings.Join(msgs, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	field := toSnake(fe.Field())
	switch fe.Tag() {
	case "required", "required_without":
		return fmt.Sprintf("%s 不能为空", field)
	case "min":
		return fmt.Sprintf("%s 长度不能少于 %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s 长度不能超过 %s", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s 长度必须为 %s", field, fe.Param())
	case "email":
		return fmt.Sprintf("%s 不是有效的邮箱地址", field)
	case "nospace":
		return fmt.Sprintf("%s 不能包含空格", field)
	case "gt":
		return fmt.Sprintf("%s 必须大于 %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s 必须是 [%s] 之一", field, fe.Param())
	default:
		return fmt.Sprintf("%s 校验失败 (%s)", field, fe.Tag())
	}
}

func toSnake(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			// 首字母缩写（如 IDToken）只在词边界处断开
			if i > 0 && (unicode.IsLower(runes[i-1]) ||
				(i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
