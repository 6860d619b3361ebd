package forms

import (
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aisa-it/formdesigner/internal/formdesigner/dao"
	"github.com/aisa-it/formdesigner/internal/formdesigner/types"
	"github.com/go-playground/validator"
	"github.com/shopspring/decimal"
)

const (
	msgRequired         = "This field is required."
	msgInvalidEmail     = "Enter a valid email address."
	msgInvalidURL       = "Enter a valid URL."
	msgInvalidValue     = "Enter a valid value."
	msgInvalidInteger   = "Enter a whole number."
	msgInvalidNumber    = "Enter a number."
	msgInvalidDate      = "Enter a valid date."
	msgInvalidChoice    = "Select a valid choice. %s is not one of the available choices."
	msgInvalidModel     = "Select a valid choice. That choice is not one of the available choices."
	msgMaxValue         = "Ensure this value is less than or equal to %s."
	msgMinValue         = "Ensure this value is greater than or equal to %s."
	msgMaxLength        = "Ensure this value has at most %d %s (it has %d)."
	msgMinLength        = "Ensure this value has at least %d %s (it has %d)."
	msgMaxDigits        = "Ensure that there are no more than %d %s in total."
	msgMaxDecimalPlaces = "Ensure that there are no more than %d decimal %s."
	msgMaxWholeDigits   = "Ensure that there are no more than %d %s before the decimal point."
)

var dateInputFormats = []string{"2006-01-02", "01/02/2006", "01/02/06"}

var integerSuffix = regexp.MustCompile(`\.0*\s*$`)

var validate = validator.New()

// ValidationError - ошибки одного поля. Остается внутри запроса и показывается рядом с полем.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, " ")
}

func (e *ValidationError) add(format string, args ...any) {
	e.Messages = append(e.Messages, fmt.Sprintf(format, args...))
}

func (e *ValidationError) orNil() error {
	if e == nil || len(e.Messages) == 0 {
		return nil
	}
	return e
}

func invalid(format string, args ...any) *ValidationError {
	e := &ValidationError{}
	e.add(format, args...)
	return e
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// cleaner приводит сырые данные поля к значению. Пустой ввод обрабатывается до вызова cleaner.
type cleaner interface {
	clean(raw []string) (Value, error)
}

// constructor строит cleaner по описанию поля и вычисленному списку вариантов.
type constructor func(def *dao.FormDefinitionField, choices []types.Choice) cleaner

// fieldConstructors - таблица диспетчеризации тип поля -> конструктор.
var fieldConstructors = map[types.FieldType]constructor{
	types.FieldText:                newTextCleaner(nil),
	types.FieldEmail:               newTextCleaner(checkEmail),
	types.FieldURL:                 newTextCleaner(checkURL),
	types.FieldRegex:               newTextCleaner(nil),
	types.FieldInteger:             newIntegerCleaner,
	types.FieldDecimal:             newDecimalCleaner,
	types.FieldBoolean:             newBoolCleaner,
	types.FieldDate:                newDateCleaner,
	types.FieldChoice:              newChoiceCleaner,
	types.FieldMultipleChoice:      newChoiceCleaner,
	types.FieldModelChoice:         newChoiceCleaner,
	types.FieldModelMultipleChoice: newChoiceCleaner,
}

func first(raw []string) string {
	if len(raw) == 0 {
		return ""
	}
	return raw[0]
}

type textCleaner struct {
	minLength, maxLength *int
	pattern              *regexp.Regexp
	check                func(string) (string, bool, string)
}

func newTextCleaner(check func(string) (string, bool, string)) constructor {
	return func(def *dao.FormDefinitionField, _ []types.Choice) cleaner {
		c := &textCleaner{
			minLength: def.MinLength,
			maxLength: def.MaxLength,
			check:     check,
		}
		if def.FieldClass == types.FieldRegex {
			// описание проверено при сохранении, но шаблон мог попасть в базу в обход проверок
			if re, err := regexp.Compile(def.Regex); err == nil {
				c.pattern = re
			}
		}
		return c
	}
}

func (c *textCleaner) clean(raw []string) (Value, error) {
	s := strings.TrimSpace(first(raw))
	errs := &ValidationError{}

	if c.check != nil {
		normalized, ok, msg := c.check(s)
		if !ok {
			return nil, invalid("%s", msg)
		}
		s = normalized
	}

	n := utf8.RuneCountInString(s)
	if c.maxLength != nil && n > *c.maxLength {
		errs.add(msgMaxLength, *c.maxLength, plural(*c.maxLength, "character", "characters"), n)
	}
	if c.minLength != nil && n < *c.minLength {
		errs.add(msgMinLength, *c.minLength, plural(*c.minLength, "character", "characters"), n)
	}
	if c.pattern != nil && !c.pattern.MatchString(s) {
		errs.add(msgInvalidValue)
	}
	if err := errs.orNil(); err != nil {
		return nil, err
	}
	return TextValue(s), nil
}

func checkEmail(s string) (string, bool, string) {
	if err := validate.Var(s, "email"); err != nil {
		return s, false, msgInvalidEmail
	}
	return s, true, ""
}

// checkURL дополняет адрес без схемы префиксом http://
func checkURL(s string) (string, bool, string) {
	if !strings.Contains(s, "://") {
		s = "http://" + s
	}
	if err := validate.Var(s, "url"); err != nil {
		return s, false, msgInvalidURL
	}
	return s, true, ""
}

type integerCleaner struct {
	min, max *int64
}

func newIntegerCleaner(def *dao.FormDefinitionField, _ []types.Choice) cleaner {
	c := &integerCleaner{}
	if def.MinValue != nil {
		v := int64(*def.MinValue)
		c.min = &v
	}
	if def.MaxValue != nil {
		v := int64(*def.MaxValue)
		c.max = &v
	}
	return c
}

func (c *integerCleaner) clean(raw []string) (Value, error) {
	s := integerSuffix.ReplaceAllString(strings.TrimSpace(first(raw)), "")
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, invalid(msgInvalidInteger)
	}

	errs := &ValidationError{}
	if c.max != nil && i > *c.max {
		errs.add(msgMaxValue, strconv.FormatInt(*c.max, 10))
	}
	if c.min != nil && i < *c.min {
		errs.add(msgMinValue, strconv.FormatInt(*c.min, 10))
	}
	if err := errs.orNil(); err != nil {
		return nil, err
	}
	return IntValue(i), nil
}

type decimalCleaner struct {
	min, max      *decimal.Decimal
	maxDigits     *int
	decimalPlaces *int
}

func newDecimalCleaner(def *dao.FormDefinitionField, _ []types.Choice) cleaner {
	c := &decimalCleaner{
		maxDigits:     def.MaxDigits,
		decimalPlaces: def.DecimalPlaces,
	}
	if def.MinValue != nil {
		v := decimal.NewFromFloat(*def.MinValue)
		c.min = &v
	}
	if def.MaxValue != nil {
		v := decimal.NewFromFloat(*def.MaxValue)
		c.max = &v
	}
	return c
}

// maxDecimalDigits ограничивает запись числа и без max_digits: "1e100000000" разворачивается в сто миллионов цифр.
const maxDecimalDigits = 1000

func (c *decimalCleaner) clean(raw []string) (Value, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(first(raw)))
	if err != nil {
		return nil, invalid(msgInvalidNumber)
	}
	if d.IsZero() && d.Exponent() > 0 {
		d = decimal.New(0, 0)
	}

	digits, decimals := decimalDigits(d)
	if digits > maxDecimalDigits {
		return nil, invalid(msgMaxDigits, maxDecimalDigits, "digits")
	}

	errs := &ValidationError{}
	if c.max != nil && d.GreaterThan(*c.max) {
		errs.add(msgMaxValue, c.max.String())
	}
	if c.min != nil && d.LessThan(*c.min) {
		errs.add(msgMinValue, c.min.String())
	}
	c.checkDigits(digits, decimals, errs)
	if err := errs.orNil(); err != nil {
		return nil, err
	}
	return DecimalValue{d}, nil
}

// decimalDigits считает цифры так же, как они записаны во вводе: "1.50" - три цифры, две после точки.
func decimalDigits(d decimal.Decimal) (digits, decimals int) {
	coefficient := new(big.Int).Abs(d.Coefficient()).String()
	exponent := int(d.Exponent())

	if exponent >= 0 {
		digits = len(coefficient)
		if coefficient != "0" {
			digits += exponent
		}
		return digits, 0
	}
	decimals = -exponent
	digits = len(coefficient)
	if decimals > digits {
		digits = decimals
	}
	return digits, decimals
}

func (c *decimalCleaner) checkDigits(digits, decimals int, errs *ValidationError) {
	whole := digits - decimals

	if c.maxDigits != nil && digits > *c.maxDigits {
		errs.add(msgMaxDigits, *c.maxDigits, plural(*c.maxDigits, "digit", "digits"))
	}
	if c.decimalPlaces != nil && decimals > *c.decimalPlaces {
		errs.add(msgMaxDecimalPlaces, *c.decimalPlaces, plural(*c.decimalPlaces, "place", "places"))
	}
	if c.maxDigits != nil && c.decimalPlaces != nil {
		limit := *c.maxDigits - *c.decimalPlaces
		if whole > limit {
			errs.add(msgMaxWholeDigits, limit, plural(limit, "digit", "digits"))
		}
	}
}

type boolCleaner struct{}

func newBoolCleaner(*dao.FormDefinitionField, []types.Choice) cleaner {
	return boolCleaner{}
}

func (boolCleaner) clean(raw []string) (Value, error) {
	return BoolValue(parseBool(first(raw))), nil
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "false", "0", "off":
		return false
	}
	return true
}

type dateCleaner struct{}

func newDateCleaner(*dao.FormDefinitionField, []types.Choice) cleaner {
	return dateCleaner{}
}

func (dateCleaner) clean(raw []string) (Value, error) {
	s := strings.TrimSpace(first(raw))
	for _, layout := range dateInputFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return DateValue(t), nil
		}
	}
	return nil, invalid(msgInvalidDate)
}

type choiceCleaner struct {
	choices  []types.Choice
	multiple bool
	model    bool
}

func newChoiceCleaner(def *dao.FormDefinitionField, choices []types.Choice) cleaner {
	return &choiceCleaner{
		choices:  choices,
		multiple: def.FieldClass.IsMultiple(),
		model:    def.FieldClass.IsModelBacked(),
	}
}

func (c *choiceCleaner) lookup(value string) (types.Choice, bool) {
	for _, choice := range c.choices {
		if choice.Value == value {
			return choice, true
		}
	}
	return types.Choice{}, false
}

func (c *choiceCleaner) wrap(choice types.Choice) Value {
	if c.model {
		return ModelValue{Value: choice.Value, Label: choice.Label}
	}
	return ChoiceValue{Value: choice.Value, Label: choice.Label}
}

func (c *choiceCleaner) clean(raw []string) (Value, error) {
	if !c.multiple {
		choice, ok := c.lookup(first(raw))
		if !ok {
			if c.model {
				return nil, invalid(msgInvalidModel)
			}
			return nil, invalid(msgInvalidChoice, first(raw))
		}
		return c.wrap(choice), nil
	}

	res := make(ListValue, 0, len(raw))
	for _, value := range raw {
		choice, ok := c.lookup(value)
		if !ok {
			return nil, invalid(msgInvalidChoice, value)
		}
		res = append(res, c.wrap(choice))
	}
	return res, nil
}

// emptyValue - значение необязательного поля, оставленного пустым.
func emptyValue(t types.FieldType) Value {
	switch {
	case t == types.FieldBoolean:
		return BoolValue(false)
	case t.IsMultiple():
		return ListValue{}
	}
	return TextValue("")
}

// isEmpty - ввод считается пустым, если в нем нет ни одного непустого значения.
func isEmpty(t types.FieldType, raw []string) bool {
	if t == types.FieldBoolean {
		return !parseBool(first(raw))
	}
	for _, v := range raw {
		if t.IsMultiple() && v != "" || strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
