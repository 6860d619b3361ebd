// Проверка тел запросов административного API. Использует go-playground/validator
// с дополнительными правилами для имен, типов полей и виджетов конструктора форм.
package formdesigner

import (
	"regexp"
	"unicode/utf8"

	"github.com/aisa-it/formdesigner/internal/formdesigner/types"
	"github.com/go-playground/validator"
)

var slugRegexp = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

type RequestValidator struct {
	validator *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New()
	err := v.RegisterValidation("slug", slugValidator)
	if err != nil {
		return nil
	}

	err = v.RegisterValidation("fieldType", fieldTypeValidator)
	if err != nil {
		return nil
	}

	err = v.RegisterValidation("widget", widgetValidator)
	if err != nil {
		return nil
	}
	return &RequestValidator{v}
}

func (rv *RequestValidator) Validate(i interface{}) error {
	if err := rv.validator.Struct(i); err != nil {
		_, ok := err.(validator.ValidationErrors)
		if !ok {
			return nil
		}
		return err
	}
	return nil
}

func slugValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	lenStr := utf8.RuneCountInString(value)
	return slugRegexp.MatchString(value) && lenStr <= 255
}

func fieldTypeValidator(fl validator.FieldLevel) bool {
	return types.FieldType(fl.Field().String()).IsValid()
}

// Пустой виджет означает виджет типа поля по умолчанию
func widgetValidator(fl validator.FieldLevel) bool {
	return types.Widget(fl.Field().String()).IsValid()
}
