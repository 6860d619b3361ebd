package forms

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Value - очищенное значение поля. Набор вариантов закрыт: TextValue, IntValue, DecimalValue,
// BoolValue, DateValue, ChoiceValue, ModelValue, ListValue.
type Value interface {
	// String возвращает каноническое текстовое представление значения.
	String() string
	// Raw возвращает значение в виде, пригодном для контекста шаблона.
	Raw() any
	value()
}

// Storable - значение само знает, как его сохранить в хранилище отправок.
type Storable interface {
	Storable() string
}

// ToStorable возвращает текст, который сохраняется в FormFieldSubmission.
func ToStorable(v Value) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(Storable); ok {
		return s.Storable()
	}
	return v.String()
}

type TextValue string

func (v TextValue) String() string { return string(v) }
func (v TextValue) Raw() any       { return string(v) }
func (TextValue) value()           {}

type IntValue int64

func (v IntValue) String() string { return strconv.FormatInt(int64(v), 10) }
func (v IntValue) Raw() any       { return int64(v) }
func (IntValue) value()           {}

type DecimalValue struct {
	decimal.Decimal
}

func (v DecimalValue) String() string { return v.Decimal.String() }
func (v DecimalValue) Raw() any       { return v.Decimal.String() }
func (DecimalValue) value()           {}

type BoolValue bool

func (v BoolValue) String() string {
	if v {
		return "True"
	}
	return "False"
}
func (v BoolValue) Raw() any { return bool(v) }
func (BoolValue) value()     {}

type DateValue time.Time

func (v DateValue) String() string { return time.Time(v).Format(time.DateOnly) }
func (v DateValue) Raw() any       { return v.String() }
func (DateValue) value()           {}

// ChoiceValue - вариант из явного списка. Сохраняется значение варианта.
type ChoiceValue struct {
	Value string
	Label string
}

func (v ChoiceValue) String() string { return v.Value }
func (v ChoiceValue) Raw() any       { return v.Value }
func (ChoiceValue) value()           {}

// ModelValue - строка внешней модели. Сохраняется ее подпись.
type ModelValue struct {
	Value string
	Label string
}

func (v ModelValue) String() string   { return v.Value }
func (v ModelValue) Raw() any         { return v.Label }
func (v ModelValue) Storable() string { return v.Label }
func (ModelValue) value()             {}

type ListValue []Value

func (v ListValue) String() string {
	return v.join(func(item Value) string { return item.String() })
}

func (v ListValue) Raw() any {
	res := make([]any, 0, len(v))
	for _, item := range v {
		res = append(res, item.Raw())
	}
	return res
}

func (v ListValue) Storable() string {
	return v.join(ToStorable)
}

func (v ListValue) join(f func(Value) string) string {
	parts := make([]string, 0, len(v))
	for _, item := range v {
		parts = append(parts, f(item))
	}
	return strings.Join(parts, ", ")
}

func (ListValue) value() {}
