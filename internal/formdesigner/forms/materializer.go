// Материализация форм: по описанию формы строится форма с полями нужных типов,
// скрытым маркером отправки, проверкой данных и HTML виджетов.
package forms

import (
	"context"
	"fmt"
	"net/url"
	"slices"

	"github.com/aisa-it/formdesigner/internal/formdesigner/config"
	"github.com/aisa-it/formdesigner/internal/formdesigner/dao"
	"github.com/aisa-it/formdesigner/internal/formdesigner/dto"
	"github.com/aisa-it/formdesigner/internal/formdesigner/types"
)

// ChoiceSource - внешний источник вариантов для полей model_choice и model_multiple_choice.
type ChoiceSource interface {
	Choices(ctx context.Context) ([]types.Choice, error)
}

// Config - настройки материализации, передаются явно при создании Materializer.
type Config struct {
	// Шаблон имени маркера отправки, содержит один %s
	SubmitFlagFormat string
	// Зарегистрированные модели выбора по имени
	ChoiceSources map[string]ChoiceSource
	// Допустимые значения form_template_name
	FormTemplates []string
}

type Materializer struct {
	cfg Config
}

func NewMaterializer(cfg Config) *Materializer {
	if cfg.SubmitFlagFormat == "" {
		cfg.SubmitFlagFormat = config.DefaultSubmitFlagFormat
	}
	if cfg.FormTemplates == nil {
		cfg.FormTemplates = config.BuiltinFormTemplates
	}
	if cfg.ChoiceSources == nil {
		cfg.ChoiceSources = map[string]ChoiceSource{}
	}
	return &Materializer{cfg: cfg}
}

// MarkerName возвращает имя скрытого поля, по которому отправка отличается от первого показа.
func (m *Materializer) MarkerName(def *dao.FormDefinition) string {
	return def.SubmitFlagName(m.cfg.SubmitFlagFormat)
}

// CheckDefinition дополняет проверки при сохранении тем, что зависит от конфигурации:
// реестром моделей выбора и списком шаблонов формы.
func (m *Materializer) CheckDefinition(def *dao.FormDefinition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	if def.FormTemplateName != "" && !slices.Contains(m.cfg.FormTemplates, def.FormTemplateName) {
		return dao.DefinitionError{Reason: fmt.Sprintf("form template %q is not allowed", def.FormTemplateName)}
	}
	for i := range def.Fields {
		field := &def.Fields[i]
		if !field.FieldClass.IsModelBacked() {
			continue
		}
		if _, ok := m.cfg.ChoiceSources[field.ChoiceModel]; !ok {
			return dao.DefinitionError{Field: field.Name, Reason: fmt.Sprintf("choice model %q is not registered", field.ChoiceModel)}
		}
	}
	return nil
}

// New создает несвязанную форму для первого показа. Значения из initial заменяют
// начальные значения полей, для полей со списком значений берется весь список.
func (m *Materializer) New(ctx context.Context, def *dao.FormDefinition, initial url.Values) (*Form, error) {
	form, err := m.build(ctx, def)
	if err != nil {
		return nil, err
	}
	for _, f := range form.Fields {
		values, ok := initial[f.Name]
		if !ok {
			continue
		}
		if f.Type.IsMultiple() {
			f.Initial = append([]string(nil), values...)
		} else {
			f.Initial = []string{initial.Get(f.Name)}
		}
	}
	return form, nil
}

// Bind создает форму, связанную с отправленными данными.
func (m *Materializer) Bind(ctx context.Context, def *dao.FormDefinition, data url.Values) (*Form, error) {
	form, err := m.build(ctx, def)
	if err != nil {
		return nil, err
	}
	form.bound = true
	for _, f := range form.Fields {
		f.Data = f.valueFromData(data)
	}
	return form, nil
}

// FieldList возвращает поля формы с актуальными вариантами выбора.
func (m *Materializer) FieldList(ctx context.Context, def *dao.FormDefinition) ([]dto.FieldListItem, error) {
	form, err := m.build(ctx, def)
	if err != nil {
		return nil, err
	}
	res := make([]dto.FieldListItem, 0, len(form.Fields))
	for _, f := range form.Fields {
		res = append(res, dto.FieldListItem{
			Name:     f.Name,
			Label:    f.Label,
			Class:    f.Type.String(),
			Position: f.Def.Position,
			Widget:   f.Widget.String(),
			Initial:  f.Def.Initial,
			HelpText: f.HelpText,
			Choices:  f.Choices,
		})
	}
	return res, nil
}

func (m *Materializer) build(ctx context.Context, def *dao.FormDefinition) (*Form, error) {
	def.SortFields()
	form := &Form{
		Definition: def,
		Marker:     m.MarkerName(def),
		Fields:     make([]*Field, 0, len(def.Fields)),
	}
	for i := range def.Fields {
		field, err := m.newField(ctx, &def.Fields[i])
		if err != nil {
			return nil, err
		}
		form.Fields = append(form.Fields, field)
	}
	return form, nil
}

func (m *Materializer) newField(ctx context.Context, def *dao.FormDefinitionField) (*Field, error) {
	construct, ok := fieldConstructors[def.FieldClass]
	if !ok {
		return nil, dao.DefinitionError{Field: def.Name, Reason: fmt.Sprintf("unknown field class %q", def.FieldClass)}
	}

	var choices []types.Choice
	switch {
	case def.FieldClass.HasChoices():
		choices = def.ChoiceList()
	case def.FieldClass.IsModelBacked():
		source, ok := m.cfg.ChoiceSources[def.ChoiceModel]
		if !ok {
			return nil, dao.DefinitionError{Field: def.Name, Reason: fmt.Sprintf("choice model %q is not registered", def.ChoiceModel)}
		}
		var err error
		if choices, err = source.Choices(ctx); err != nil {
			return nil, &ChoiceSourceError{Model: def.ChoiceModel, Err: err}
		}
	}

	f := &Field{
		Def:      def,
		Name:     def.Name,
		Label:    def.DisplayLabel(),
		Type:     def.FieldClass,
		Widget:   def.Widget.Resolve(def.FieldClass),
		Required: def.Required,
		HelpText: def.HelpText,
		Choices:  choices,
		Initial:  initialValues(def),
		cleaner:  construct(def, choices),
	}
	if def.FieldClass.IsModelBacked() && !def.FieldClass.IsMultiple() {
		f.EmptyLabel = def.ChoiceModelEmptyLabel
	}
	return f, nil
}

// ChoiceSourceError - внешний источник вариантов выбора недоступен.
type ChoiceSourceError struct {
	Model string
	Err   error
}

func (e *ChoiceSourceError) Error() string {
	return fmt.Sprintf("choice model %s: %v", e.Model, e.Err)
}

func (e *ChoiceSourceError) Unwrap() error {
	return e.Err
}
