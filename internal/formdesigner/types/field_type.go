// Закрытые перечисления конструктора форм: типы полей и виджеты.
package types

import (
	"fmt"
)

type FieldType string

const (
	FieldText                FieldType = "text"
	FieldEmail               FieldType = "email"
	FieldURL                 FieldType = "url"
	FieldRegex               FieldType = "regex"
	FieldInteger             FieldType = "integer"
	FieldDecimal             FieldType = "decimal"
	FieldBoolean             FieldType = "boolean"
	FieldDate                FieldType = "date"
	FieldChoice              FieldType = "choice"
	FieldMultipleChoice      FieldType = "multiple_choice"
	FieldModelChoice         FieldType = "model_choice"
	FieldModelMultipleChoice FieldType = "model_multiple_choice"
)

var fieldTypes = []FieldType{
	FieldText,
	FieldEmail,
	FieldURL,
	FieldRegex,
	FieldInteger,
	FieldDecimal,
	FieldBoolean,
	FieldDate,
	FieldChoice,
	FieldMultipleChoice,
	FieldModelChoice,
	FieldModelMultipleChoice,
}

var fieldDefaultWidgets = map[FieldType]Widget{
	FieldText:                WidgetTextInput,
	FieldEmail:               WidgetEmailInput,
	FieldURL:                 WidgetURLInput,
	FieldRegex:               WidgetTextInput,
	FieldInteger:             WidgetNumberInput,
	FieldDecimal:             WidgetNumberInput,
	FieldBoolean:             WidgetCheckboxInput,
	FieldDate:                WidgetDateInput,
	FieldChoice:              WidgetSelect,
	FieldMultipleChoice:      WidgetSelectMultiple,
	FieldModelChoice:         WidgetSelect,
	FieldModelMultipleChoice: WidgetSelectMultiple,
}

// FieldTypes возвращает все поддерживаемые типы полей в фиксированном порядке.
func FieldTypes() []FieldType {
	return append([]FieldType(nil), fieldTypes...)
}

func ParseFieldType(s string) (FieldType, error) {
	t := FieldType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("unknown field type %q", s)
	}
	return t, nil
}

func (t FieldType) IsValid() bool {
	_, ok := fieldDefaultWidgets[t]
	return ok
}

func (t FieldType) String() string {
	return string(t)
}

// IsMultiple - поле принимает список значений
func (t FieldType) IsMultiple() bool {
	return t == FieldMultipleChoice || t == FieldModelMultipleChoice
}

// IsModelBacked - варианты выбора берутся из внешней модели
func (t FieldType) IsModelBacked() bool {
	return t == FieldModelChoice || t == FieldModelMultipleChoice
}

// HasChoices - поле выбирает значение из явного списка вариантов
func (t FieldType) HasChoices() bool {
	return t == FieldChoice || t == FieldMultipleChoice
}

// HasLength - к полю применимы ограничения длины
func (t FieldType) HasLength() bool {
	return t == FieldText || t == FieldEmail || t == FieldURL || t == FieldRegex
}

// IsNumeric - к полю применимы числовые границы
func (t FieldType) IsNumeric() bool {
	return t == FieldInteger || t == FieldDecimal
}

func (t FieldType) DefaultWidget() Widget {
	return fieldDefaultWidgets[t]
}
