package formdesigner

import (
	"strings"

	"github.com/aisa-it/formdesigner/internal/formdesigner/dao"
	"github.com/aisa-it/formdesigner/internal/formdesigner/dto"
	"github.com/aisa-it/formdesigner/internal/formdesigner/types"
)

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// applyDefinitionRequest переносит атрибуты формы из запроса. Поля формы переносятся отдельно.
func applyDefinitionRequest(def *dao.FormDefinition, req *dto.FormDefinitionRequest) {
	defaults := dao.NewFormDefinition(req.Name)

	def.Name = req.Name
	def.Title = req.Title
	def.Description = req.Description
	def.Action = req.Action
	def.Method = strings.ToUpper(req.Method)
	if def.Method == "" {
		def.Method = defaults.Method
	}
	def.SuccessMessage = req.SuccessMessage
	def.ErrorMessage = req.ErrorMessage
	def.SubmitLabel = req.SubmitLabel
	def.LogData = boolOr(req.LogData, defaults.LogData)
	def.SuccessRedirect = boolOr(req.SuccessRedirect, defaults.SuccessRedirect)
	def.SuccessClear = boolOr(req.SuccessClear, defaults.SuccessClear)
	def.AllowGetInitial = boolOr(req.AllowGetInitial, defaults.AllowGetInitial)
	def.MessageTemplate = req.MessageTemplate
	def.FormTemplateName = req.FormTemplateName
	def.MailTo = req.MailTo
	def.MailFrom = req.MailFrom
	def.MailSubject = req.MailSubject
}

// applyFieldRequest переносит атрибуты поля из запроса.
// Позиция по умолчанию - порядковый номер поля в запросе, так поля без позиции сохраняют порядок запроса.
func applyFieldRequest(field *dao.FormDefinitionField, req *dto.FormFieldRequest, index int) {
	field.Name = req.Name
	field.FieldClass = types.FieldType(req.FieldClass)
	field.Position = index
	if req.Position != nil {
		field.Position = *req.Position
	}
	field.Label = req.Label
	field.Required = boolOr(req.Required, true)
	field.IncludeResult = boolOr(req.IncludeResult, true)
	field.Widget = types.Widget(req.Widget)
	field.Initial = req.Initial
	field.HelpText = req.HelpText
	field.MaxLength = req.MaxLength
	field.MinLength = req.MinLength
	field.MaxValue = req.MaxValue
	field.MinValue = req.MinValue
	field.MaxDigits = req.MaxDigits
	field.DecimalPlaces = req.DecimalPlaces
	field.Regex = req.Regex
	field.ChoiceModel = req.ChoiceModel
	field.ChoiceModelEmptyLabel = req.ChoiceModelEmptyLabel
}

func choicesFromRequest(req []dto.ChoiceRequest) []dao.FormDefinitionFieldChoice {
	choices := make([]dao.FormDefinitionFieldChoice, 0, len(req))
	for i, c := range req {
		label := c.Label
		if label == "" {
			label = c.Value
		}
		choices = append(choices, dao.FormDefinitionFieldChoice{Position: i, Label: label, Value: c.Value})
	}
	return choices
}

// definitionFromRequest строит новое описание формы вместе с полями и вариантами выбора.
func definitionFromRequest(req *dto.FormDefinitionRequest) *dao.FormDefinition {
	def := dao.NewFormDefinition(req.Name)
	applyDefinitionRequest(def, req)
	def.Fields = make([]dao.FormDefinitionField, len(req.Fields))
	for i := range req.Fields {
		applyFieldRequest(&def.Fields[i], &req.Fields[i], i)
		def.Fields[i].Choices = choicesFromRequest(req.Fields[i].Choices)
	}
	return def
}
