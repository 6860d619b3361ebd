package dao

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/aisa-it/formdesigner/internal/formdesigner/dto"
	policy "github.com/aisa-it/formdesigner/internal/formdesigner/redactor-policy"
	"github.com/aisa-it/formdesigner/internal/formdesigner/types"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type FormDefinitionField struct {
	ID        uuid.UUID `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	FormDefinitionId uuid.UUID `json:"form_definition" gorm:"type:uuid;not null;uniqueIndex:form_field_name_idx,priority:1"`

	FieldClass    types.FieldType `json:"field_class" gorm:"size:50;not null"`
	Position      int             `json:"position"`
	Name          string          `json:"name" gorm:"size:255;not null;uniqueIndex:form_field_name_idx,priority:2"`
	Label         string          `json:"label" gorm:"size:255"`
	Required      bool            `json:"required"`
	IncludeResult bool            `json:"include_result"`
	Widget        types.Widget    `json:"widget" gorm:"size:50"`
	Initial       string          `json:"initial"`
	HelpText      string          `json:"help_text" gorm:"size:255"`

	Choices []FormDefinitionFieldChoice `json:"choices" gorm:"many2many:form_definition_field_choice_links;constraint:OnDelete:CASCADE"`

	MaxLength     *int     `json:"max_length" extensions:"x-nullable"`
	MinLength     *int     `json:"min_length" extensions:"x-nullable"`
	MaxValue      *float64 `json:"max_value" extensions:"x-nullable"`
	MinValue      *float64 `json:"min_value" extensions:"x-nullable"`
	MaxDigits     *int     `json:"max_digits" extensions:"x-nullable"`
	DecimalPlaces *int     `json:"decimal_places" extensions:"x-nullable"`
	Regex         string   `json:"regex" gorm:"size:255"`

	// Имя модели из реестра CHOICE_MODELS_FILE
	ChoiceModel           string `json:"choice_model" gorm:"size:255"`
	ChoiceModelEmptyLabel string `json:"choice_model_empty_label" gorm:"size:255"`
}

type FormDefinitionFieldChoice struct {
	ID       uuid.UUID `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	Position int       `json:"position"`
	Label    string    `json:"label" gorm:"size:255;not null"`
	Value    string    `json:"value" gorm:"size:255;not null"`
}

// NewFormDefinitionField создает поле, обязательное и включаемое в результаты.
func NewFormDefinitionField(name string, class types.FieldType) FormDefinitionField {
	return FormDefinitionField{
		Name:          name,
		FieldClass:    class,
		Required:      true,
		IncludeResult: true,
	}
}

func (FormDefinitionField) TableName() string { return "form_definition_fields" }

func (FormDefinitionFieldChoice) TableName() string { return "form_definition_field_choices" }

func (f *FormDefinitionField) BeforeCreate(tx *gorm.DB) error {
	if f.ID.IsNil() {
		f.ID = GenUUID()
	}
	return nil
}

func (f *FormDefinitionField) BeforeSave(tx *gorm.DB) error {
	f.Name = strings.TrimSpace(f.Name)
	f.Label = policy.PlainText(f.Label)
	f.HelpText = policy.PlainText(f.HelpText)
	return f.Validate()
}

func (c *FormDefinitionFieldChoice) BeforeCreate(tx *gorm.DB) error {
	if c.ID.IsNil() {
		c.ID = GenUUID()
	}
	return nil
}

// Validate проверяет согласованность поля: тип, виджет и ограничения.
// Наличие модели в реестре проверяется отдельно, при материализации.
func (f *FormDefinitionField) Validate() error {
	if !slugRegexp.MatchString(f.Name) || len(f.Name) > 255 {
		return definitionErrorf(f.Name, "name must be a slug of letters, digits, hyphens or underscores")
	}
	if !f.FieldClass.IsValid() {
		return definitionErrorf(f.Name, "unknown field class %q", f.FieldClass)
	}
	if !f.Widget.IsValid() {
		return definitionErrorf(f.Name, "unknown widget %q", f.Widget)
	}
	if err := f.checkWidget(); err != nil {
		return err
	}

	if f.FieldClass.IsModelBacked() && f.ChoiceModel == "" {
		return definitionErrorf(f.Name, "This field class requires a model.")
	}
	if f.FieldClass == types.FieldRegex {
		if f.Regex == "" {
			return definitionErrorf(f.Name, "regex field requires a pattern")
		}
		if _, err := regexp.Compile(f.Regex); err != nil {
			return definitionErrorf(f.Name, "invalid regex: %s", err.Error())
		}
	}

	if f.MinLength != nil && *f.MinLength < 0 || f.MaxLength != nil && *f.MaxLength < 0 {
		return definitionErrorf(f.Name, "length bounds must not be negative")
	}
	if f.MinLength != nil && f.MaxLength != nil && *f.MinLength > *f.MaxLength {
		return definitionErrorf(f.Name, "min_length %d is greater than max_length %d", *f.MinLength, *f.MaxLength)
	}
	if f.MinValue != nil && f.MaxValue != nil && *f.MinValue > *f.MaxValue {
		return definitionErrorf(f.Name, "min_value %v is greater than max_value %v", *f.MinValue, *f.MaxValue)
	}
	if f.MaxDigits != nil && *f.MaxDigits < 1 {
		return definitionErrorf(f.Name, "max_digits must be positive")
	}
	if f.DecimalPlaces != nil && *f.DecimalPlaces < 0 {
		return definitionErrorf(f.Name, "decimal_places must not be negative")
	}
	if f.MaxDigits != nil && f.DecimalPlaces != nil && *f.DecimalPlaces > *f.MaxDigits {
		return definitionErrorf(f.Name, "decimal_places %d is greater than max_digits %d", *f.DecimalPlaces, *f.MaxDigits)
	}
	return nil
}

func (f *FormDefinitionField) checkWidget() error {
	w := f.Widget.Resolve(f.FieldClass)
	choiceLike := f.FieldClass.HasChoices() || f.FieldClass.IsModelBacked()
	switch {
	case f.FieldClass.IsMultiple() && !w.IsMultiple():
		return definitionErrorf(f.Name, "widget %q can not send several values", w)
	case !f.FieldClass.IsMultiple() && w.IsMultiple():
		return definitionErrorf(f.Name, "widget %q sends several values for a single value field", w)
	case !choiceLike && w.HasOptions():
		return definitionErrorf(f.Name, "widget %q requires choices", w)
	}
	return nil
}

// DisplayLabel - подпись поля, а если она не задана, его имя.
func (f *FormDefinitionField) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

// ChoiceList возвращает явные варианты выбора поля по порядку.
func (f *FormDefinitionField) ChoiceList() []types.Choice {
	choices := make([]FormDefinitionFieldChoice, len(f.Choices))
	copy(choices, f.Choices)
	sort.SliceStable(choices, func(i, j int) bool {
		return choices[i].Position < choices[j].Position
	})

	res := make([]types.Choice, 0, len(choices))
	for _, c := range choices {
		res = append(res, types.Choice{Value: c.Value, Label: c.Label})
	}
	return res
}

// ChoiceLabel возвращает подпись варианта по его значению.
func (f *FormDefinitionField) ChoiceLabel(value string) (string, bool) {
	for _, c := range f.Choices {
		if c.Value == value {
			return c.Label, true
		}
	}
	return "", false
}

func (f *FormDefinitionField) ToDTO() *dto.FormDefinitionField {
	if f == nil {
		return nil
	}
	return &dto.FormDefinitionField{
		ID:                    f.ID.String(),
		FieldClass:            f.FieldClass.String(),
		Position:              f.Position,
		Name:                  f.Name,
		Label:                 f.Label,
		Required:              f.Required,
		IncludeResult:         f.IncludeResult,
		Widget:                f.Widget.String(),
		Initial:               f.Initial,
		HelpText:              f.HelpText,
		Choices:               f.ChoiceList(),
		MaxLength:             f.MaxLength,
		MinLength:             f.MinLength,
		MaxValue:              f.MaxValue,
		MinValue:              f.MinValue,
		MaxDigits:             f.MaxDigits,
		DecimalPlaces:         f.DecimalPlaces,
		Regex:                 f.Regex,
		ChoiceModel:           f.ChoiceModel,
		ChoiceModelEmptyLabel: f.ChoiceModelEmptyLabel,
	}
}

// ReplaceChoices заменяет варианты выбора поля. Старые варианты удаляются.
func ReplaceChoices(tx *gorm.DB, field *FormDefinitionField, choices []FormDefinitionFieldChoice) error {
	if err := deleteFieldChoices(tx, field); err != nil {
		return err
	}
	field.Choices = nil
	if len(choices) == 0 {
		return nil
	}
	for i := range choices {
		choices[i].Position = i
	}
	if err := tx.Model(field).Association("Choices").Append(choices); err != nil {
		return err
	}
	field.Choices = choices
	return nil
}

func deleteFieldChoices(tx *gorm.DB, field *FormDefinitionField) error {
	var choiceIds []uuid.UUID
	if err := tx.Table("form_definition_field_choice_links").
		Where("form_definition_field_id = ?", field.ID).
		Pluck("form_definition_field_choice_id", &choiceIds).Error; err != nil {
		return err
	}
	if err := tx.Exec("DELETE FROM form_definition_field_choice_links WHERE form_definition_field_id = ?", field.ID).Error; err != nil {
		return err
	}
	if len(choiceIds) == 0 {
		return nil
	}
	// Вариант может быть привязан к нескольким полям, удаляются только осиротевшие
	return tx.Where("id IN (?)", choiceIds).
		Where("id NOT IN (?)", tx.Table("form_definition_field_choice_links").Select("form_definition_field_choice_id")).
		Delete(&FormDefinitionFieldChoice{}).Error
}

// DeleteField удаляет поле вместе с его вариантами и всеми сохраненными значениями.
func DeleteField(tx *gorm.DB, field *FormDefinitionField) error {
	if err := tx.Where("form_definition_field_id = ?", field.ID).
		Delete(&FormFieldSubmission{}).Error; err != nil {
		return err
	}
	if err := deleteFieldChoices(tx, field); err != nil {
		return err
	}
	return tx.Delete(field).Error
}
