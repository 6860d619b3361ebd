package dao

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/aisa-it/formdesigner/internal/formdesigner/dto"
	policy "github.com/aisa-it/formdesigner/internal/formdesigner/redactor-policy"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

var slugRegexp = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

const (
	MethodPOST = "POST"
	MethodGET  = "GET"
)

type FormDefinition struct {
	ID        uuid.UUID `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name        string `json:"name" gorm:"uniqueIndex;not null;size:255"`
	Title       string `json:"title" gorm:"size:255"`
	Description string `json:"description"`
	// Пустой action - форма отправляется на ту же страницу
	Action string `json:"action" gorm:"size:255"`
	Method string `json:"method" gorm:"size:10;not null"`

	SuccessMessage string `json:"success_message" gorm:"size:255"`
	ErrorMessage   string `json:"error_message" gorm:"size:255"`
	SubmitLabel    string `json:"submit_label" gorm:"size:255"`

	LogData         bool `json:"log_data"`
	SuccessRedirect bool `json:"success_redirect"`
	SuccessClear    bool `json:"success_clear"`
	AllowGetInitial bool `json:"allow_get_initial"`

	MessageTemplate  string `json:"message_template"`
	FormTemplateName string `json:"form_template_name" gorm:"size:255"`

	MailTo      string `json:"mail_to" gorm:"size:255"`
	MailFrom    string `json:"mail_from" gorm:"size:255"`
	MailSubject string `json:"mail_subject" gorm:"size:255"`

	Fields []FormDefinitionField `json:"fields" gorm:"foreignKey:FormDefinitionId;constraint:OnDelete:CASCADE"`
}

// NewFormDefinition создает описание формы со значениями флагов по умолчанию.
func NewFormDefinition(name string) *FormDefinition {
	return &FormDefinition{
		Name:            name,
		Method:          MethodPOST,
		LogData:         true,
		SuccessClear:    true,
		AllowGetInitial: true,
	}
}

func (FormDefinition) TableName() string { return "form_definitions" }

func (def *FormDefinition) BeforeCreate(tx *gorm.DB) error {
	if def.ID.IsNil() {
		def.ID = GenUUID()
	}
	return nil
}

// BeforeSave очищает текст, введенный оператором, и проверяет описание формы.
func (def *FormDefinition) BeforeSave(tx *gorm.DB) error {
	def.Name = strings.TrimSpace(def.Name)
	def.Title = policy.PlainText(def.Title)
	def.Description = policy.SafeHTML(def.Description)
	def.SuccessMessage = policy.PlainText(def.SuccessMessage)
	def.ErrorMessage = policy.PlainText(def.ErrorMessage)
	def.SubmitLabel = policy.PlainText(def.SubmitLabel)
	def.Action = strings.TrimSpace(def.Action)
	def.Method = strings.ToUpper(strings.TrimSpace(def.Method))
	if def.Method == "" {
		def.Method = MethodPOST
	}
	return def.Validate()
}

// Validate проверяет описание формы без обращения к конфигурации.
func (def *FormDefinition) Validate() error {
	if !slugRegexp.MatchString(def.Name) || len(def.Name) > 255 {
		return DefinitionError{Reason: fmt.Sprintf("form name %q must be a slug of letters, digits, hyphens or underscores", def.Name)}
	}
	if def.Method != MethodPOST && def.Method != MethodGET {
		return DefinitionError{Reason: fmt.Sprintf("unsupported method %q", def.Method)}
	}

	names := make(map[string]struct{}, len(def.Fields))
	for i := range def.Fields {
		field := &def.Fields[i]
		if _, ok := names[field.Name]; ok {
			return definitionErrorf(field.Name, "field name is used more than once")
		}
		names[field.Name] = struct{}{}
		if err := field.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// SortFields упорядочивает поля по позиции, сохраняя исходный порядок равных.
func (def *FormDefinition) SortFields() {
	sort.SliceStable(def.Fields, func(i, j int) bool {
		return def.Fields[i].Position < def.Fields[j].Position
	})
}

func (def *FormDefinition) GetFieldDict() map[string]*FormDefinitionField {
	res := make(map[string]*FormDefinitionField, len(def.Fields))
	for i := range def.Fields {
		res[def.Fields[i].Name] = &def.Fields[i]
	}
	return res
}

func (def *FormDefinition) CountFields() int {
	return len(def.Fields)
}

// SubmitFlagName возвращает имя скрытого поля-маркера отправки.
// Если имя совпадает с именем поля формы, к нему добавляется "_" до получения уникального имени.
func (def *FormDefinition) SubmitFlagName(format string) string {
	name := fmt.Sprintf(format, def.Name)
	fields := def.GetFieldDict()
	for {
		if _, ok := fields[name]; !ok {
			return name
		}
		name += "_"
	}
}

// DisplayTitle - заголовок формы, а если он не задан, ее имя.
func (def *FormDefinition) DisplayTitle() string {
	if def.Title != "" {
		return def.Title
	}
	return def.Name
}

func (def *FormDefinition) ToLightDTO() *dto.FormDefinitionLight {
	if def == nil {
		return nil
	}
	return &dto.FormDefinitionLight{
		ID:          def.ID.String(),
		Name:        def.Name,
		Title:       def.Title,
		Description: def.Description,
		Action:      def.Action,
		Method:      def.Method,
		SubmitLabel: def.SubmitLabel,
		FieldsCount: def.CountFields(),
		CreatedAt:   def.CreatedAt,
		UpdatedAt:   def.UpdatedAt,
	}
}

func (def *FormDefinition) ToDTO() *dto.FormDefinition {
	if def == nil {
		return nil
	}
	res := &dto.FormDefinition{
		FormDefinitionLight: *def.ToLightDTO(),
		SuccessMessage:      def.SuccessMessage,
		ErrorMessage:        def.ErrorMessage,
		LogData:             def.LogData,
		SuccessRedirect:     def.SuccessRedirect,
		SuccessClear:        def.SuccessClear,
		AllowGetInitial:     def.AllowGetInitial,
		MessageTemplate:     def.MessageTemplate,
		FormTemplateName:    def.FormTemplateName,
		MailTo:              def.MailTo,
		MailFrom:            def.MailFrom,
		MailSubject:         def.MailSubject,
		Fields:              make([]dto.FormDefinitionField, 0, len(def.Fields)),
	}
	for i := range def.Fields {
		res.Fields = append(res.Fields, *def.Fields[i].ToDTO())
	}
	return res
}

func orderFields(db *gorm.DB) *gorm.DB {
	return db.Order("position, created_at")
}

func orderChoices(db *gorm.DB) *gorm.DB {
	return db.Order("position")
}

// PreloadDefinition подгружает поля формы по порядку вместе с вариантами выбора.
func PreloadDefinition(db *gorm.DB) *gorm.DB {
	return db.Preload("Fields", orderFields).Preload("Fields.Choices", orderChoices)
}

// GetFormDefinition находит описание формы по имени. Если формы нет, возвращается gorm.ErrRecordNotFound.
func GetFormDefinition(db *gorm.DB, name string) (*FormDefinition, error) {
	var def FormDefinition
	if err := PreloadDefinition(db).Where("name = ?", name).First(&def).Error; err != nil {
		return nil, err
	}
	def.SortFields()
	return &def, nil
}

func ListFormDefinitions(db *gorm.DB) ([]FormDefinition, error) {
	var defs []FormDefinition
	if err := db.Preload("Fields", orderFields).Order("name").Find(&defs).Error; err != nil {
		return nil, err
	}
	return defs, nil
}

// DeleteFormDefinition удаляет форму вместе с полями и всеми ее отправками.
func DeleteFormDefinition(tx *gorm.DB, def *FormDefinition) error {
	var submissionIds []uuid.UUID
	if err := tx.Model(&FormSubmission{}).
		Where("form_definition_id = ?", def.ID).
		Pluck("id", &submissionIds).Error; err != nil {
		return err
	}
	if err := DeleteSubmissions(tx, submissionIds); err != nil {
		return err
	}
	for i := range def.Fields {
		if err := DeleteField(tx, &def.Fields[i]); err != nil {
			return err
		}
	}
	return tx.Delete(def).Error
}
