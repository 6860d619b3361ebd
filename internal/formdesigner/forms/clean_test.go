package forms

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/aisa-it/formdesigner/internal/formdesigner/dao"
	"github.com/aisa-it/formdesigner/internal/formdesigner/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cleanOne(t *testing.T, field dao.FormDefinitionField, raw ...string) (Value, []string) {
	t.Helper()
	def := dao.NewFormDefinition("single")
	def.Fields = []dao.FormDefinitionField{field}

	data := url.Values{}
	if raw != nil {
		data[field.Name] = raw
	}
	form, err := newMaterializer().Bind(context.Background(), def, data)
	require.NoError(t, err)
	form.IsValid()
	f := form.Field(field.Name)
	return f.Value, f.Errors
}

func TestCleanField(t *testing.T) {
	text := dao.NewFormDefinitionField("f", types.FieldText)
	text.MinLength = intPtr(2)
	text.MaxLength = intPtr(5)

	optional := dao.NewFormDefinitionField("f", types.FieldText)
	optional.Required = false

	email := dao.NewFormDefinitionField("f", types.FieldEmail)
	link := dao.NewFormDefinitionField("f", types.FieldURL)

	code := dao.NewFormDefinitionField("f", types.FieldRegex)
	code.Regex = `^[A-Z]{3}$`

	integer := dao.NewFormDefinitionField("f", types.FieldInteger)
	integer.MinValue = floatPtr(1)
	integer.MaxValue = floatPtr(10.9)

	price := dao.NewFormDefinitionField("f", types.FieldDecimal)
	price.MaxDigits = intPtr(4)
	price.DecimalPlaces = intPtr(2)
	price.MaxValue = floatPtr(50.5)

	amount := dao.NewFormDefinitionField("f", types.FieldDecimal)

	flag := dao.NewFormDefinitionField("f", types.FieldBoolean)
	optionalFlag := dao.NewFormDefinitionField("f", types.FieldBoolean)
	optionalFlag.Required = false

	date := dao.NewFormDefinitionField("f", types.FieldDate)

	tags := dao.NewFormDefinitionField("f", types.FieldMultipleChoice)
	tags.Choices = []dao.FormDefinitionFieldChoice{{Value: "a", Label: "A"}, {Value: "b", Label: "B"}}

	tests := []struct {
		name   string
		field  dao.FormDefinitionField
		raw    []string
		want   Value
		errors []string
	}{
		{name: "text", field: text, raw: []string{" abc "}, want: TextValue("abc")},
		{name: "text missing", field: text, errors: []string{"This field is required."}},
		{name: "text whitespace only", field: text, raw: []string{"   "}, errors: []string{"This field is required."}},
		{name: "text too short", field: text, raw: []string{"a"}, errors: []string{"Ensure this value has at least 2 characters (it has 1)."}},
		{name: "text too long", field: text, raw: []string{"привет!"}, errors: []string{"Ensure this value has at most 5 characters (it has 7)."}},
		{name: "optional empty", field: optional, raw: []string{""}, want: TextValue("")},

		{name: "email", field: email, raw: []string{"a@x.com"}, want: TextValue("a@x.com")},
		{name: "email invalid", field: email, raw: []string{"a@"}, errors: []string{"Enter a valid email address."}},
		{name: "url", field: link, raw: []string{"https://example.com/a"}, want: TextValue("https://example.com/a")},
		{name: "url without scheme", field: link, raw: []string{"example.com"}, want: TextValue("http://example.com")},
		{name: "url invalid", field: link, raw: []string{"not a url"}, errors: []string{"Enter a valid URL."}},
		{name: "regex", field: code, raw: []string{"ABC"}, want: TextValue("ABC")},
		{name: "regex mismatch", field: code, raw: []string{"abc"}, errors: []string{"Enter a valid value."}},

		{name: "integer", field: integer, raw: []string{"7"}, want: IntValue(7)},
		{name: "integer with zero fraction", field: integer, raw: []string{"7.00"}, want: IntValue(7)},
		{name: "integer with fraction", field: integer, raw: []string{"7.5"}, errors: []string{"Enter a whole number."}},
		{name: "integer above max", field: integer, raw: []string{"11"}, errors: []string{"Ensure this value is less than or equal to 10."}},
		{name: "integer below min", field: integer, raw: []string{"0"}, errors: []string{"Ensure this value is greater than or equal to 1."}},

		{name: "decimal", field: price, raw: []string{"12.50"}, want: DecimalValue{decimal.RequireFromString("12.50")}},
		{name: "decimal invalid", field: price, raw: []string{"12,5"}, errors: []string{"Enter a number."}},
		{name: "decimal above max", field: price, raw: []string{"50.51"}, errors: []string{"Ensure this value is less than or equal to 50.5."}},
		{name: "decimal places", field: price, raw: []string{"1.125"}, errors: []string{"Ensure that there are no more than 2 decimal places."}},
		{name: "decimal total digits", field: price, raw: []string{"0.12345"}, errors: []string{"Ensure that there are no more than 4 digits in total.", "Ensure that there are no more than 2 decimal places."}},
		{name: "decimal exponent", field: amount, raw: []string{"1e3"}, want: DecimalValue{decimal.RequireFromString("1e3")}},
		{name: "decimal huge exponent", field: amount, raw: []string{"1e100000000"}, errors: []string{"Ensure that there are no more than 1000 digits in total."}},
		{name: "decimal huge negative exponent", field: amount, raw: []string{"-1e-100000000"}, errors: []string{"Ensure that there are no more than 1000 digits in total."}},
		{name: "decimal zero with exponent", field: amount, raw: []string{"0e100000000"}, want: DecimalValue{decimal.New(0, 0)}},
		{name: "decimal whole digits", field: price, raw: []string{"123"}, errors: []string{"Ensure this value is less than or equal to 50.5.", "Ensure that there are no more than 2 digits before the decimal point."}},

		{name: "boolean on", field: flag, raw: []string{"on"}, want: BoolValue(true)},
		{name: "boolean required", field: flag, raw: []string{"false"}, errors: []string{"This field is required."}},
		{name: "boolean optional missing", field: optionalFlag, want: BoolValue(false)},

		{name: "date iso", field: date, raw: []string{"2024-02-29"}, want: DateValue(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC))},
		{name: "date us", field: date, raw: []string{"02/29/2024"}, want: DateValue(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC))},
		{name: "date invalid", field: date, raw: []string{"2023-02-29"}, errors: []string{"Enter a valid date."}},

		{name: "multiple choice", field: tags, raw: []string{"b", "a"}, want: ListValue{ChoiceValue{Value: "b", Label: "B"}, ChoiceValue{Value: "a", Label: "A"}}},
		{name: "multiple choice invalid", field: tags, raw: []string{"a", "z"}, errors: []string{"Select a valid choice. z is not one of the available choices."}},
		{name: "multiple choice missing", field: tags, errors: []string{"This field is required."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, errs := cleanOne(t, tt.field, tt.raw...)
			assert.Equal(t, tt.errors, errs)
			if tt.errors == nil {
				assert.Equal(t, tt.want, value)
			} else {
				assert.Nil(t, value)
			}
		})
	}
}

func TestToStorable(t *testing.T) {
	assert.Equal(t, "", ToStorable(nil))
	assert.Equal(t, "Ann", ToStorable(TextValue("Ann")))
	assert.Equal(t, "42", ToStorable(IntValue(42)))
	assert.Equal(t, "True", ToStorable(BoolValue(true)))
	assert.Equal(t, "2024-01-02", ToStorable(DateValue(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))))
	assert.Equal(t, "b", ToStorable(ChoiceValue{Value: "b", Label: "Banana"}))
	assert.Equal(t, "Russia", ToStorable(ModelValue{Value: "2", Label: "Russia"}))
	assert.Equal(t, "a, Russia", ToStorable(ListValue{ChoiceValue{Value: "a"}, ModelValue{Value: "2", Label: "Russia"}}))

	var _ Storable = ModelValue{}
	var _ Storable = ListValue{}
}
