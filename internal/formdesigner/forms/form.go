package forms

import (
	"errors"
	"html/template"
	"net/url"
	"strings"

	"github.com/aisa-it/formdesigner/internal/formdesigner/dao"
	"github.com/aisa-it/formdesigner/internal/formdesigner/dto"
	"github.com/aisa-it/formdesigner/internal/formdesigner/types"
)

type Form struct {
	Definition *dao.FormDefinition
	// Имя скрытого поля-маркера отправки
	Marker string
	Fields []*Field

	bound     bool
	validated bool
	cleaned   map[string]Value
	errors    map[string][]string
}

type Field struct {
	Def *dao.FormDefinitionField

	Name       string
	Label      string
	Type       types.FieldType
	Widget     types.Widget
	Required   bool
	HelpText   string
	Choices    []types.Choice
	EmptyLabel string

	// Начальные значения для несвязанной формы
	Initial []string
	// Отправленные значения для связанной формы
	Data []string
	// Очищенное значение, заполняется после успешной проверки
	Value  Value
	Errors []string

	bound   bool
	cleaner cleaner
}

// initialValues разбирает начальное значение из описания поля.
// Для полей со списком значений оно записывается через запятую.
func initialValues(def *dao.FormDefinitionField) []string {
	if def.Initial == "" {
		return nil
	}
	if !def.FieldClass.IsMultiple() {
		return []string{def.Initial}
	}
	var res []string
	for _, v := range strings.Split(def.Initial, ",") {
		if v = strings.TrimSpace(v); v != "" {
			res = append(res, v)
		}
	}
	return res
}

func (f *Field) valueFromData(data url.Values) []string {
	f.bound = true
	if f.Type.IsMultiple() {
		return append([]string(nil), data[f.Name]...)
	}
	if _, ok := data[f.Name]; !ok {
		return nil
	}
	return []string{data.Get(f.Name)}
}

// Values - значения, которые показываются в виджете.
func (f *Field) Values() []string {
	if f.bound {
		return f.Data
	}
	return f.Initial
}

func (f *Field) clean() {
	f.Errors = nil
	f.Value = nil
	if isEmpty(f.Type, f.Data) {
		if f.Required {
			f.Errors = []string{msgRequired}
			return
		}
		f.Value = emptyValue(f.Type)
		return
	}

	v, err := f.cleaner.clean(f.Data)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			f.Errors = verr.Messages
		} else {
			f.Errors = []string{err.Error()}
		}
		return
	}
	f.Value = v
}

// HTML отображает виджет поля.
func (f *Field) HTML() template.HTML {
	return renderWidget(f)
}

func (f *Field) ID() string {
	return "id_" + f.Name
}

func (f *Field) ToDTO() dto.FormField {
	return dto.FormField{
		Name:       f.Name,
		Label:      f.Label,
		Type:       f.Type.String(),
		Widget:     f.Widget.String(),
		Required:   f.Required,
		HelpText:   f.HelpText,
		Value:      f.Values(),
		Choices:    f.Choices,
		EmptyLabel: f.EmptyLabel,
		Errors:     f.Errors,
	}
}

func (form *Form) IsBound() bool {
	return form.bound
}

// IsValid проверяет все поля связанной формы. Проверка выполняется один раз.
func (form *Form) IsValid() bool {
	if !form.bound {
		return false
	}
	form.fullClean()
	return len(form.errors) == 0
}

func (form *Form) fullClean() {
	if form.validated {
		return
	}
	form.validated = true
	form.cleaned = make(map[string]Value, len(form.Fields))
	form.errors = make(map[string][]string)
	for _, f := range form.Fields {
		f.clean()
		if len(f.Errors) > 0 {
			form.errors[f.Name] = f.Errors
			continue
		}
		form.cleaned[f.Name] = f.Value
	}
}

// CleanedData возвращает очищенные значения полей, прошедших проверку.
func (form *Form) CleanedData() map[string]Value {
	if !form.bound {
		return nil
	}
	form.fullClean()
	return form.cleaned
}

// Errors возвращает ошибки проверки по именам полей.
func (form *Form) Errors() map[string][]string {
	if !form.bound {
		return nil
	}
	form.fullClean()
	return form.errors
}

func (form *Form) Field(name string) *Field {
	for _, f := range form.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// MarkerHTML отображает скрытый маркер отправки.
func (form *Form) MarkerHTML() template.HTML {
	return renderMarker(form.Marker)
}

func (form *Form) SubmitLabel() string {
	if form.Definition.SubmitLabel != "" {
		return form.Definition.SubmitLabel
	}
	return "Submit"
}

func (form *Form) ToDTO() *dto.Form {
	res := &dto.Form{
		Marker:      form.Marker,
		Method:      form.Definition.Method,
		Action:      form.Definition.Action,
		SubmitLabel: form.SubmitLabel(),
		Bound:       form.bound,
		Fields:      make([]dto.FormField, 0, len(form.Fields)),
	}
	for _, f := range form.Fields {
		res.Fields = append(res.Fields, f.ToDTO())
	}
	return res
}
