package dao

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aisa-it/formdesigner/internal/formdesigner/config"
	"github.com/aisa-it/formdesigner/internal/formdesigner/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := OpenDB("sqlite", "file::memory:?_pragma=foreign_keys(1)", nil)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func intPtr(i int) *int { return &i }

func contactDefinition() *FormDefinition {
	def := NewFormDefinition("contact")
	def.Title = "Contact"
	def.MailTo = "{{ email }}"

	email := NewFormDefinitionField("email", types.FieldEmail)
	email.Position = 2
	name := NewFormDefinitionField("name", types.FieldText)
	name.Position = 1
	name.MaxLength = intPtr(50)
	topic := NewFormDefinitionField("topic", types.FieldChoice)
	topic.Position = 3
	topic.Required = false
	topic.Choices = []FormDefinitionFieldChoice{
		{Position: 1, Value: "b", Label: "Banana"},
		{Position: 0, Value: "a", Label: "Apple"},
	}
	def.Fields = []FormDefinitionField{email, name, topic}
	return def
}

func TestNewFormDefinition(t *testing.T) {
	def := NewFormDefinition("feedback")
	assert.Equal(t, MethodPOST, def.Method)
	assert.True(t, def.LogData)
	assert.True(t, def.SuccessClear)
	assert.True(t, def.AllowGetInitial)
	assert.False(t, def.SuccessRedirect)
	assert.Equal(t, "feedback", def.DisplayTitle())

	field := NewFormDefinitionField("age", types.FieldInteger)
	assert.True(t, field.Required)
	assert.True(t, field.IncludeResult)
	assert.Equal(t, "age", field.DisplayLabel())
}

func TestCreateAndGetFormDefinition(t *testing.T) {
	db := newTestDB(t)

	def := contactDefinition()
	def.Title = "<b>Contact</b> us"
	def.Description = `<p onclick="x()">Hello</p>`
	def.Method = "post"
	require.NoError(t, db.Create(def).Error)
	assert.False(t, def.ID.IsNil())

	got, err := GetFormDefinition(db, "contact")
	require.NoError(t, err)
	assert.Equal(t, "Contact us", got.Title)
	assert.Equal(t, "<p>Hello</p>", got.Description)
	assert.Equal(t, MethodPOST, got.Method)
	assert.True(t, got.LogData)

	require.Len(t, got.Fields, 3)
	assert.Equal(t, "name", got.Fields[0].Name)
	assert.Equal(t, "email", got.Fields[1].Name)
	assert.Equal(t, "topic", got.Fields[2].Name)
	assert.Equal(t, 50, *got.Fields[0].MaxLength)

	assert.Equal(t, []types.Choice{{Value: "a", Label: "Apple"}, {Value: "b", Label: "Banana"}}, got.Fields[2].ChoiceList())
	label, ok := got.Fields[2].ChoiceLabel("b")
	assert.True(t, ok)
	assert.Equal(t, "Banana", label)

	d := got.ToDTO()
	assert.Equal(t, 3, d.FieldsCount)
	assert.Equal(t, "topic", d.Fields[2].Name)

	_, err = GetFormDefinition(db, "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestFormDefinitionUniqueName(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(NewFormDefinition("contact")).Error)
	err := db.Create(NewFormDefinition("contact")).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestDefinitionValidation(t *testing.T) {
	db := newTestDB(t)

	tests := []struct {
		name   string
		modify func(def *FormDefinition)
		field  string
		reason string
	}{
		{
			name:   "bad slug",
			modify: func(def *FormDefinition) { def.Name = "contact us" },
		},
		{
			name:   "bad method",
			modify: func(def *FormDefinition) { def.Method = "PUT" },
		},
		{
			name: "unknown field class",
			modify: func(def *FormDefinition) {
				def.Fields[0].FieldClass = "color"
			},
			field: "email",
		},
		{
			name: "model choice without model",
			modify: func(def *FormDefinition) {
				def.Fields = append(def.Fields, NewFormDefinitionField("country", types.FieldModelChoice))
			},
			field:  "country",
			reason: "This field class requires a model.",
		},
		{
			name: "empty regex",
			modify: func(def *FormDefinition) {
				def.Fields = append(def.Fields, NewFormDefinitionField("code", types.FieldRegex))
			},
			field: "code",
		},
		{
			name: "broken regex",
			modify: func(def *FormDefinition) {
				f := NewFormDefinitionField("code", types.FieldRegex)
				f.Regex = "[a-z"
				def.Fields = append(def.Fields, f)
			},
			field: "code",
		},
		{
			name: "min length above max",
			modify: func(def *FormDefinition) {
				def.Fields[1].MinLength = intPtr(60)
			},
			field: "name",
		},
		{
			name: "multiple widget on single choice",
			modify: func(def *FormDefinition) {
				def.Fields[2].Widget = types.WidgetSelectMultiple
			},
			field: "topic",
		},
		{
			name: "select widget on text",
			modify: func(def *FormDefinition) {
				def.Fields[1].Widget = types.WidgetRadioSelect
			},
			field: "name",
		},
		{
			name: "duplicate field name",
			modify: func(def *FormDefinition) {
				def.Fields[0].Name = "name"
			},
			field: "name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := contactDefinition()
			tt.modify(def)

			err := db.Create(def).Error
			var defErr DefinitionError
			require.True(t, errors.As(err, &defErr), "expected DefinitionError, got %v", err)
			assert.Equal(t, tt.field, defErr.Field)
			if tt.reason != "" {
				assert.Equal(t, tt.reason, defErr.Reason)
			}
		})
	}

	var count int64
	db.Model(&FormDefinition{}).Count(&count)
	assert.Zero(t, count)
}

func TestSubmitFlagName(t *testing.T) {
	def := contactDefinition()
	assert.Equal(t, "contact_submit", def.SubmitFlagName("%s_submit"))

	def.Fields = append(def.Fields,
		NewFormDefinitionField("contact_submit", types.FieldText),
		NewFormDefinitionField("contact_submit_", types.FieldText))
	assert.Equal(t, "contact_submit__", def.SubmitFlagName("%s_submit"))
}

func createSubmission(t *testing.T, db *gorm.DB, def *FormDefinition, created time.Time, values map[string]string) *FormSubmission {
	t.Helper()
	sub := &FormSubmission{FormDefinitionId: def.ID, CreatedAt: created}
	for _, f := range def.Fields {
		if v, ok := values[f.Name]; ok {
			sub.Values = append(sub.Values, FormFieldSubmission{FormDefinitionFieldId: f.ID, Value: v})
		}
	}
	require.NoError(t, db.Create(sub).Error)
	return sub
}

func TestSubmissions(t *testing.T) {
	db := newTestDB(t)
	def := contactDefinition()
	require.NoError(t, db.Create(def).Error)

	now := time.Now()
	old := createSubmission(t, db, def, now.Add(-time.Hour), map[string]string{"email": "a@x.com", "name": "Ann", "topic": "b"})
	createSubmission(t, db, def, now, map[string]string{"email": "b@x.com", "name": "Bob"})
	createSubmission(t, db, def, now.Add(time.Minute), nil)

	t.Run("list newest first", func(t *testing.T) {
		list, count, err := ListSubmissions(db, def.ID, 0, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 3, count)
		require.Len(t, list, 3)
		assert.Empty(t, list[0].Values)
		assert.Equal(t, "contact", list[0].ToDTO().FormName)
		assert.Equal(t, old.ID, list[2].ID)

		page, _, err := ListSubmissions(db, def.ID, 1, 1)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, "Bob", page[0].Values[0].Value)
	})

	t.Run("values in field order with choice label", func(t *testing.T) {
		sub, err := GetSubmission(db, old.ID)
		require.NoError(t, err)
		d := sub.ToDTO()
		require.Len(t, d.Values, 3)
		assert.Equal(t, "name", d.Values[0].Field)
		assert.Equal(t, "email", d.Values[1].Field)
		assert.Nil(t, d.Values[1].ChoiceLabel)
		assert.Equal(t, "topic", d.Values[2].Field)
		require.NotNil(t, d.Values[2].ChoiceLabel)
		assert.Equal(t, "Banana", *d.Values[2].ChoiceLabel)
	})

	t.Run("values are immutable", func(t *testing.T) {
		value := old.Values[0]
		err := db.Model(&value).Update("value", "changed").Error
		assert.ErrorIs(t, err, ErrImmutableSubmission)
	})

	t.Run("delete older submissions", func(t *testing.T) {
		deleted, err := DeleteSubmissionsBefore(db, now.Add(-time.Minute), 100)
		require.NoError(t, err)
		assert.Equal(t, 1, deleted)

		_, err = GetSubmission(db, old.ID)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

		var values int64
		db.Model(&FormFieldSubmission{}).Where("submission_id = ?", old.ID).Count(&values)
		assert.Zero(t, values)
	})
}

func TestDeleteField(t *testing.T) {
	db := newTestDB(t)
	def := contactDefinition()
	require.NoError(t, db.Create(def).Error)
	sub := createSubmission(t, db, def, time.Now(), map[string]string{"email": "a@x.com", "name": "Ann", "topic": "a"})

	topic := def.GetFieldDict()["topic"]
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return DeleteField(tx, topic)
	}))

	got, err := GetSubmission(db, sub.ID)
	require.NoError(t, err)
	assert.Len(t, got.Values, 2)

	var choices int64
	db.Model(&FormDefinitionFieldChoice{}).Count(&choices)
	assert.Zero(t, choices)
}

func TestReplaceChoices(t *testing.T) {
	db := newTestDB(t)
	def := contactDefinition()
	require.NoError(t, db.Create(def).Error)

	topic := def.GetFieldDict()["topic"]
	require.NoError(t, ReplaceChoices(db, topic, []FormDefinitionFieldChoice{{Value: "c", Label: "Cherry"}}))

	got, err := GetFormDefinition(db, "contact")
	require.NoError(t, err)
	assert.Equal(t, []types.Choice{{Value: "c", Label: "Cherry"}}, got.Fields[2].ChoiceList())

	var choices int64
	db.Model(&FormDefinitionFieldChoice{}).Count(&choices)
	assert.EqualValues(t, 1, choices)
}

func TestDeleteFormDefinition(t *testing.T) {
	db := newTestDB(t)
	def := contactDefinition()
	require.NoError(t, db.Create(def).Error)
	createSubmission(t, db, def, time.Now(), map[string]string{"email": "a@x.com", "name": "Ann"})

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return DeleteFormDefinition(tx, def)
	}))

	for _, model := range Models()[:5] {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		assert.Zero(t, count, "%T", model)
	}
}

func TestTableChoiceSource(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Exec(`CREATE TABLE countries (code TEXT, title TEXT)`).Error)
	require.NoError(t, db.Exec(`INSERT INTO countries VALUES ('ru', 'Russia'), ('am', 'Armenia')`).Error)

	models, err := config.ParseChoiceModels([]byte("models:\n  - name: countries\n    value_column: code\n    label_column: title\n"))
	require.NoError(t, err)

	sources := NewTableChoiceSources(db, models)
	require.Contains(t, sources, "countries")

	choices, err := sources["countries"].Choices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []types.Choice{{Value: "am", Label: "Armenia"}, {Value: "ru", Label: "Russia"}}, choices)

	_, err = NewTableChoiceSource(db, config.ChoiceModel{Name: "none", Table: "none", ValueColumn: "id", LabelColumn: "name", OrderBy: "name"}).Choices(context.Background())
	assert.Error(t, err)
}

func TestTemplates(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&Template{Name: "formdefinition/detail.html", Template: "<p>x</p>"}).Error)

	temp, err := GetTemplate(db, "formdefinition/detail.html")
	require.NoError(t, err)
	assert.NotEmpty(t, temp.Id)
	assert.Equal(t, "<p>x</p>", temp.Template)

	_, err = GetTemplate(db, "missing.html")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
