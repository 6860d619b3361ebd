package dto

// FormDefinitionRequest - тело запроса на создание или замену описания формы.
// Незаданные логические флаги получают значения по умолчанию.
type FormDefinitionRequest struct {
	Name        string `json:"name" validate:"required,slug"`
	Title       string `json:"title" validate:"max=255"`
	Description string `json:"description"`
	Action      string `json:"action" validate:"max=255"`
	Method      string `json:"method" validate:"omitempty,oneof=POST GET post get"`

	SuccessMessage string `json:"success_message" validate:"max=255"`
	ErrorMessage   string `json:"error_message" validate:"max=255"`
	SubmitLabel    string `json:"submit_label" validate:"max=255"`

	LogData         *bool `json:"log_data" extensions:"x-nullable"`
	SuccessRedirect *bool `json:"success_redirect" extensions:"x-nullable"`
	SuccessClear    *bool `json:"success_clear" extensions:"x-nullable"`
	AllowGetInitial *bool `json:"allow_get_initial" extensions:"x-nullable"`

	MessageTemplate  string `json:"message_template"`
	FormTemplateName string `json:"form_template_name" validate:"max=255"`

	MailTo      string `json:"mail_to" validate:"max=255"`
	MailFrom    string `json:"mail_from" validate:"max=255"`
	MailSubject string `json:"mail_subject" validate:"max=255"`

	Fields []FormFieldRequest `json:"fields" validate:"dive"`
}

type FormFieldRequest struct {
	FieldClass    string          `json:"field_class" validate:"required,fieldType"`
	Position      *int            `json:"position" extensions:"x-nullable"`
	Name          string          `json:"name" validate:"required,slug"`
	Label         string          `json:"label" validate:"max=255"`
	Required      *bool           `json:"required" extensions:"x-nullable"`
	IncludeResult *bool           `json:"include_result" extensions:"x-nullable"`
	Widget        string          `json:"widget" validate:"widget"`
	Initial       string          `json:"initial"`
	HelpText      string          `json:"help_text" validate:"max=255"`
	Choices       []ChoiceRequest `json:"choices" validate:"dive"`

	MaxLength     *int     `json:"max_length" validate:"omitempty,min=0" extensions:"x-nullable"`
	MinLength     *int     `json:"min_length" validate:"omitempty,min=0" extensions:"x-nullable"`
	MaxValue      *float64 `json:"max_value" extensions:"x-nullable"`
	MinValue      *float64 `json:"min_value" extensions:"x-nullable"`
	MaxDigits     *int     `json:"max_digits" validate:"omitempty,min=1" extensions:"x-nullable"`
	DecimalPlaces *int     `json:"decimal_places" validate:"omitempty,min=0" extensions:"x-nullable"`
	Regex         string   `json:"regex" validate:"max=255"`

	ChoiceModel           string `json:"choice_model" validate:"max=255"`
	ChoiceModelEmptyLabel string `json:"choice_model_empty_label" validate:"max=255"`
}

type ChoiceRequest struct {
	Label string `json:"label"`
	Value string `json:"value"`
}
