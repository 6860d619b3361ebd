package dto

import (
	"time"

	"github.com/aisa-it/formdesigner/internal/formdesigner/types"
)

type FieldSubmission struct {
	Field       string  `json:"field"`
	Label       string  `json:"label"`
	Value       string  `json:"value"`
	ChoiceLabel *string `json:"choice_label" extensions:"x-nullable"`
}

type FormSubmission struct {
	ID        string            `json:"id"`
	Created   time.Time         `json:"created"`
	FormName  string            `json:"form_name"`
	FormTitle string            `json:"form_title"`
	Values    []FieldSubmission `json:"values"`
}

type SubmissionList struct {
	Count  int64            `json:"count"`
	Offset int              `json:"offset"`
	Limit  int              `json:"limit"`
	Result []FormSubmission `json:"result"`
}

// FormField - поле материализованной формы в том виде, в каком его показывают пользователю.
type FormField struct {
	Name       string         `json:"name"`
	Label      string         `json:"label"`
	Type       string         `json:"type"`
	Widget     string         `json:"widget"`
	Required   bool           `json:"required"`
	HelpText   string         `json:"help_text"`
	Value      []string       `json:"value"`
	Choices    []types.Choice `json:"choices,omitempty"`
	EmptyLabel string         `json:"empty_label,omitempty"`
	Errors     []string       `json:"errors,omitempty"`
}

type Form struct {
	Marker      string      `json:"marker"`
	Method      string      `json:"method"`
	Action      string      `json:"action"`
	SubmitLabel string      `json:"submit_label"`
	Bound       bool        `json:"bound"`
	Fields      []FormField `json:"fields"`
}

// FormContext - результат обработки запроса к форме: сообщение, форма и ее описание.
type FormContext struct {
	State          string               `json:"state"`
	Message        string               `json:"message,omitempty"`
	Form           *Form                `json:"form"`
	FormDefinition *FormDefinitionLight `json:"form_definition"`
	Redirect       string               `json:"redirect,omitempty"`
	SubmissionID   string               `json:"submission_id,omitempty"`
}
