// Структуры данных, которыми API конструктора форм обменивается с клиентами.
package dto

import (
	"time"

	"github.com/aisa-it/formdesigner/internal/formdesigner/types"
)

type FormDefinitionLight struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Action      string    `json:"action"`
	Method      string    `json:"method"`
	SubmitLabel string    `json:"submit_label"`
	FieldsCount int       `json:"fields_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type FormDefinition struct {
	FormDefinitionLight

	SuccessMessage   string `json:"success_message"`
	ErrorMessage     string `json:"error_message"`
	LogData          bool   `json:"log_data"`
	SuccessRedirect  bool   `json:"success_redirect"`
	SuccessClear     bool   `json:"success_clear"`
	AllowGetInitial  bool   `json:"allow_get_initial"`
	MessageTemplate  string `json:"message_template"`
	FormTemplateName string `json:"form_template_name"`
	MailTo           string `json:"mail_to"`
	MailFrom         string `json:"mail_from"`
	MailSubject      string `json:"mail_subject"`

	Fields []FormDefinitionField `json:"fields"`
}

type FormDefinitionField struct {
	ID            string         `json:"id"`
	FieldClass    string         `json:"field_class"`
	Position      int            `json:"position"`
	Name          string         `json:"name"`
	Label         string         `json:"label"`
	Required      bool           `json:"required"`
	IncludeResult bool           `json:"include_result"`
	Widget        string         `json:"widget"`
	Initial       string         `json:"initial"`
	HelpText      string         `json:"help_text"`
	Choices       []types.Choice `json:"choices"`

	MaxLength     *int     `json:"max_length" extensions:"x-nullable"`
	MinLength     *int     `json:"min_length" extensions:"x-nullable"`
	MaxValue      *float64 `json:"max_value" extensions:"x-nullable"`
	MinValue      *float64 `json:"min_value" extensions:"x-nullable"`
	MaxDigits     *int     `json:"max_digits" extensions:"x-nullable"`
	DecimalPlaces *int     `json:"decimal_places" extensions:"x-nullable"`
	Regex         string   `json:"regex"`

	ChoiceModel           string `json:"choice_model"`
	ChoiceModelEmptyLabel string `json:"choice_model_empty_label"`
}

// FieldListItem - поле формы в упрощенном виде вместе с актуальными вариантами выбора.
type FieldListItem struct {
	Name     string         `json:"name"`
	Label    string         `json:"label"`
	Class    string         `json:"class"`
	Position int            `json:"position"`
	Widget   string         `json:"widget"`
	Initial  string         `json:"initial"`
	HelpText string         `json:"help_text"`
	Choices  []types.Choice `json:"choices,omitempty"`
}

type FieldTypes struct {
	FieldTypes []string `json:"field_types"`
	Widgets    []string `json:"widgets"`
}
