package dao

import (
	"sort"
	"time"

	"github.com/aisa-it/formdesigner/internal/formdesigner/dto"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// FormSubmission - одна отправка формы. Ссылка на описание формы хранится явно,
// поэтому отправка без сохраняемых полей не теряет связь со своей формой.
type FormSubmission struct {
	ID        uuid.UUID `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	CreatedAt time.Time `json:"created" gorm:"index"`

	FormDefinitionId uuid.UUID       `json:"form_definition" gorm:"type:uuid;not null;index"`
	FormDefinition   *FormDefinition `json:"-" gorm:"foreignKey:FormDefinitionId;constraint:OnDelete:CASCADE" extensions:"x-nullable"`

	Values []FormFieldSubmission `json:"values" gorm:"foreignKey:SubmissionId;constraint:OnDelete:CASCADE"`
}

// FormFieldSubmission - значение одного поля в отправке. После создания не изменяется.
type FormFieldSubmission struct {
	ID uuid.UUID `gorm:"column:id;primaryKey;type:uuid" json:"id"`

	SubmissionId uuid.UUID `json:"submission" gorm:"type:uuid;not null;index"`

	FormDefinitionFieldId uuid.UUID            `json:"definition_field" gorm:"type:uuid;not null;index"`
	DefinitionField       *FormDefinitionField `json:"-" gorm:"foreignKey:FormDefinitionFieldId;constraint:OnDelete:CASCADE" extensions:"x-nullable"`

	Value string `json:"value"`
}

func (FormSubmission) TableName() string { return "form_submissions" }

func (FormFieldSubmission) TableName() string { return "form_field_submissions" }

func (s *FormSubmission) BeforeCreate(tx *gorm.DB) error {
	if s.ID.IsNil() {
		s.ID = GenUUID()
	}
	return nil
}

func (v *FormFieldSubmission) BeforeCreate(tx *gorm.DB) error {
	if v.ID.IsNil() {
		v.ID = GenUUID()
	}
	return nil
}

func (v *FormFieldSubmission) BeforeUpdate(tx *gorm.DB) error {
	return ErrImmutableSubmission
}

// ChoiceLabel возвращает подпись выбранного варианта, если поле - выбор из явного списка.
func (v *FormFieldSubmission) ChoiceLabel() *string {
	if v.DefinitionField == nil || !v.DefinitionField.FieldClass.HasChoices() {
		return nil
	}
	if label, ok := v.DefinitionField.ChoiceLabel(v.Value); ok {
		return &label
	}
	return nil
}

func (v *FormFieldSubmission) ToDTO() *dto.FieldSubmission {
	if v == nil {
		return nil
	}
	res := &dto.FieldSubmission{
		Value:       v.Value,
		ChoiceLabel: v.ChoiceLabel(),
	}
	if v.DefinitionField != nil {
		res.Field = v.DefinitionField.Name
		res.Label = v.DefinitionField.DisplayLabel()
	}
	return res
}

func (s *FormSubmission) ToDTO() *dto.FormSubmission {
	if s == nil {
		return nil
	}
	res := &dto.FormSubmission{
		ID:      s.ID.String(),
		Created: s.CreatedAt,
		Values:  make([]dto.FieldSubmission, 0, len(s.Values)),
	}
	if s.FormDefinition != nil {
		res.FormName = s.FormDefinition.Name
		res.FormTitle = s.FormDefinition.DisplayTitle()
	}
	for i := range s.Values {
		res.Values = append(res.Values, *s.Values[i].ToDTO())
	}
	return res
}

func preloadSubmission(db *gorm.DB) *gorm.DB {
	return db.Preload("FormDefinition").
		Preload("Values.DefinitionField.Choices")
}

// sortValues упорядочивает значения отправки как поля формы.
func (s *FormSubmission) sortValues() {
	sort.SliceStable(s.Values, func(i, j int) bool {
		a, b := s.Values[i].DefinitionField, s.Values[j].DefinitionField
		if a == nil || b == nil {
			return b == nil && a != nil
		}
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}

// ListSubmissions возвращает отправки формы, начиная с новых, и их общее количество.
func ListSubmissions(db *gorm.DB, formId uuid.UUID, offset, limit int) ([]FormSubmission, int64, error) {
	var count int64
	query := db.Model(&FormSubmission{}).Where("form_definition_id = ?", formId)
	if err := query.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var submissions []FormSubmission
	if err := preloadSubmission(db).
		Where("form_definition_id = ?", formId).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&submissions).Error; err != nil {
		return nil, 0, err
	}
	for i := range submissions {
		submissions[i].sortValues()
	}
	return submissions, count, nil
}

func GetSubmission(db *gorm.DB, id uuid.UUID) (*FormSubmission, error) {
	var submission FormSubmission
	if err := preloadSubmission(db).Where("id = ?", id).First(&submission).Error; err != nil {
		return nil, err
	}
	submission.sortValues()
	return &submission, nil
}

// DeleteSubmissions удаляет отправки вместе со значениями полей.
func DeleteSubmissions(tx *gorm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Where("submission_id IN (?)", ids).Delete(&FormFieldSubmission{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN (?)", ids).Delete(&FormSubmission{}).Error
}

// DeleteSubmissionsBefore удаляет не больше limit отправок, созданных раньше before.
// Возвращает количество удаленных отправок.
func DeleteSubmissionsBefore(db *gorm.DB, before time.Time, limit int) (int, error) {
	var ids []uuid.UUID
	if err := db.Model(&FormSubmission{}).
		Where("created_at < ?", before).
		Order("created_at").
		Limit(limit).
		Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	if err := db.Transaction(func(tx *gorm.DB) error {
		return DeleteSubmissions(tx, ids)
	}); err != nil {
		return 0, err
	}
	return len(ids), nil
}
