package forms

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/aisa-it/formdesigner/internal/formdesigner/dao"
	"github.com/aisa-it/formdesigner/internal/formdesigner/dto"
	"github.com/aisa-it/formdesigner/internal/formdesigner/types"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	choices []types.Choice
	err     error
}

func (s staticSource) Choices(ctx context.Context) ([]types.Choice, error) {
	return s.choices, s.err
}

func intPtr(i int) *int { return &i }

func floatPtr(f float64) *float64 { return &f }

func contactDefinition() *dao.FormDefinition {
	def := dao.NewFormDefinition("contact")
	name := dao.NewFormDefinitionField("name", types.FieldText)
	name.Position = 1
	email := dao.NewFormDefinitionField("email", types.FieldEmail)
	email.Position = 2
	def.Fields = []dao.FormDefinitionField{email, name}
	return def
}

func fruitField() dao.FormDefinitionField {
	f := dao.NewFormDefinitionField("fruit", types.FieldChoice)
	f.Position = 3
	f.Choices = []dao.FormDefinitionFieldChoice{
		{Position: 0, Value: "a", Label: "Apple"},
		{Position: 1, Value: "b", Label: "Banana"},
	}
	return f
}

func newMaterializer() *Materializer {
	return NewMaterializer(Config{
		ChoiceSources: map[string]ChoiceSource{
			"countries": staticSource{choices: []types.Choice{{Value: "1", Label: "Armenia"}, {Value: "2", Label: "Russia"}}},
			"broken":    staticSource{err: errors.New("connection refused")},
		},
	})
}

func TestMaterializeFieldsAndMarker(t *testing.T) {
	m := newMaterializer()

	def := contactDefinition()
	form, err := m.New(context.Background(), def, nil)
	require.NoError(t, err)
	require.Len(t, form.Fields, 2)
	assert.Equal(t, "name", form.Fields[0].Name)
	assert.Equal(t, "email", form.Fields[1].Name)
	assert.Equal(t, "contact_submit", form.Marker)
	assert.False(t, form.IsBound())
	assert.False(t, form.IsValid())

	def.Fields = append(def.Fields, dao.NewFormDefinitionField("contact_submit", types.FieldText))
	form, err = m.New(context.Background(), def, nil)
	require.NoError(t, err)
	assert.Len(t, form.Fields, 3)
	assert.Equal(t, "contact_submit_", form.Marker)
	assert.Nil(t, form.Field(form.Marker))
	assert.Equal(t, `<input type="hidden" name="contact_submit_" value="1">`, string(form.MarkerHTML()))

	custom := NewMaterializer(Config{SubmitFlagFormat: "submitted-%s"})
	assert.Equal(t, "submitted-contact", custom.MarkerName(def))
}

func TestPrefill(t *testing.T) {
	m := newMaterializer()
	def := contactDefinition()
	def.Fields[1].Initial = "Anonymous"
	tags := dao.NewFormDefinitionField("tags", types.FieldMultipleChoice)
	tags.Position = 5
	tags.Initial = "a, b"
	tags.Choices = []dao.FormDefinitionFieldChoice{{Value: "a", Label: "A"}, {Value: "b", Label: "B"}, {Value: "c", Label: "C"}}
	def.Fields = append(def.Fields, tags)

	form, err := m.New(context.Background(), def, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Anonymous"}, form.Field("name").Values())
	assert.Equal(t, []string{"a", "b"}, form.Field("tags").Values())

	query := url.Values{"name": {"Bob", "Ignored"}, "tags": {"c", "a"}, "unknown": {"x"}}
	first, err := m.New(context.Background(), def, query)
	require.NoError(t, err)
	second, err := m.New(context.Background(), def, query)
	require.NoError(t, err)

	assert.Equal(t, []string{"Bob"}, first.Field("name").Values())
	assert.Equal(t, []string{"c", "a"}, first.Field("tags").Values())
	assert.Nil(t, first.Field("email").Values())
	if diff := cmp.Diff(first.ToDTO(), second.ToDTO()); diff != "" {
		t.Errorf("prefill is not idempotent (-first +second):\n%s", diff)
	}
}

func TestBindValid(t *testing.T) {
	m := newMaterializer()
	def := contactDefinition()
	def.Fields = append(def.Fields, fruitField())

	form, err := m.Bind(context.Background(), def, url.Values{
		"name":           {" Ann "},
		"email":          {"a@x.com"},
		"fruit":          {"b"},
		"contact_submit": {"1"},
	})
	require.NoError(t, err)
	require.True(t, form.IsValid(), "errors: %v", form.Errors())

	data := form.CleanedData()
	assert.Equal(t, TextValue("Ann"), data["name"])
	assert.Equal(t, TextValue("a@x.com"), data["email"])
	assert.Equal(t, ChoiceValue{Value: "b", Label: "Banana"}, data["fruit"])
	assert.Empty(t, form.Errors())
}

func TestBindInvalid(t *testing.T) {
	m := newMaterializer()
	def := contactDefinition()
	def.Fields = append(def.Fields, fruitField())

	form, err := m.Bind(context.Background(), def, url.Values{
		"name":  {""},
		"email": {"a@x.com"},
		"fruit": {"c"},
	})
	require.NoError(t, err)
	assert.False(t, form.IsValid())

	want := map[string][]string{
		"name":  {"This field is required."},
		"fruit": {"Select a valid choice. c is not one of the available choices."},
	}
	if diff := cmp.Diff(want, form.Errors()); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
	assert.NotContains(t, form.CleanedData(), "name")
	assert.Contains(t, form.CleanedData(), "email")

	got := form.ToDTO()
	assert.True(t, got.Bound)
	assert.Equal(t, []string{""}, got.Fields[0].Value)
	assert.Equal(t, []string{"c"}, got.Fields[2].Value)
	assert.Equal(t, []string{"Select a valid choice. c is not one of the available choices."}, got.Fields[2].Errors)
}

func TestModelChoice(t *testing.T) {
	m := newMaterializer()
	def := dao.NewFormDefinition("order")
	country := dao.NewFormDefinitionField("country", types.FieldModelChoice)
	country.ChoiceModel = "countries"
	country.ChoiceModelEmptyLabel = "---------"
	visited := dao.NewFormDefinitionField("visited", types.FieldModelMultipleChoice)
	visited.ChoiceModel = "countries"
	visited.Required = false
	visited.Position = 1
	def.Fields = []dao.FormDefinitionField{country, visited}

	t.Run("valid", func(t *testing.T) {
		form, err := m.Bind(context.Background(), def, url.Values{"country": {"2"}, "visited": {"1", "2"}})
		require.NoError(t, err)
		require.True(t, form.IsValid(), "errors: %v", form.Errors())
		data := form.CleanedData()
		assert.Equal(t, ModelValue{Value: "2", Label: "Russia"}, data["country"])
		assert.Equal(t, "Russia", ToStorable(data["country"]))
		assert.Equal(t, "Armenia, Russia", ToStorable(data["visited"]))
		assert.Equal(t, "1, 2", data["visited"].String())
	})

	t.Run("invalid", func(t *testing.T) {
		form, err := m.Bind(context.Background(), def, url.Values{"country": {"3"}, "visited": {"1", "9"}})
		require.NoError(t, err)
		assert.False(t, form.IsValid())
		assert.Equal(t, []string{"Select a valid choice. That choice is not one of the available choices."}, form.Errors()["country"])
		assert.Equal(t, []string{"Select a valid choice. 9 is not one of the available choices."}, form.Errors()["visited"])
	})

	t.Run("optional multiple left empty", func(t *testing.T) {
		form, err := m.Bind(context.Background(), def, url.Values{"country": {"1"}})
		require.NoError(t, err)
		require.True(t, form.IsValid())
		assert.Equal(t, ListValue{}, form.CleanedData()["visited"])
	})

	t.Run("empty label option", func(t *testing.T) {
		form, err := m.New(context.Background(), def, nil)
		require.NoError(t, err)
		html := string(form.Field("country").HTML())
		assert.True(t, strings.Index(html, "---------") < strings.Index(html, "Armenia"), html)
		assert.NotContains(t, string(form.Field("visited").HTML()), "---------")
	})

	t.Run("source failure", func(t *testing.T) {
		broken := dao.NewFormDefinition("broken")
		f := dao.NewFormDefinitionField("country", types.FieldModelChoice)
		f.ChoiceModel = "broken"
		broken.Fields = []dao.FormDefinitionField{f}

		_, err := m.New(context.Background(), broken, nil)
		var srcErr *ChoiceSourceError
		require.ErrorAs(t, err, &srcErr)
		assert.Equal(t, "broken", srcErr.Model)
	})

	t.Run("unregistered model", func(t *testing.T) {
		missing := dao.NewFormDefinition("missing")
		f := dao.NewFormDefinitionField("country", types.FieldModelChoice)
		f.ChoiceModel = "planets"
		missing.Fields = []dao.FormDefinitionField{f}

		_, err := m.New(context.Background(), missing, nil)
		var defErr dao.DefinitionError
		require.ErrorAs(t, err, &defErr)
		assert.Equal(t, "country", defErr.Field)
	})
}

func TestCheckDefinition(t *testing.T) {
	m := newMaterializer()

	def := contactDefinition()
	assert.NoError(t, m.CheckDefinition(def))

	def.FormTemplateName = "formdefinition/forms/as_table.html"
	assert.NoError(t, m.CheckDefinition(def))

	def.FormTemplateName = "../../etc/passwd"
	var defErr dao.DefinitionError
	assert.ErrorAs(t, m.CheckDefinition(def), &defErr)

	def = contactDefinition()
	f := dao.NewFormDefinitionField("planet", types.FieldModelChoice)
	f.ChoiceModel = "planets"
	def.Fields = append(def.Fields, f)
	require.ErrorAs(t, m.CheckDefinition(def), &defErr)
	assert.Equal(t, "planet", defErr.Field)

	def = contactDefinition()
	def.Fields = append(def.Fields, dao.NewFormDefinitionField("planet", types.FieldModelChoice))
	require.ErrorAs(t, m.CheckDefinition(def), &defErr)
	assert.Equal(t, "This field class requires a model.", defErr.Reason)
}

func TestFieldList(t *testing.T) {
	m := newMaterializer()
	def := contactDefinition()
	country := dao.NewFormDefinitionField("country", types.FieldModelChoice)
	country.ChoiceModel = "countries"
	country.Position = 4
	def.Fields = append(def.Fields, fruitField(), country)

	list, err := m.FieldList(context.Background(), def)
	require.NoError(t, err)

	want := []dto.FieldListItem{
		{Name: "name", Label: "name", Class: "text", Position: 1, Widget: "text_input"},
		{Name: "email", Label: "email", Class: "email", Position: 2, Widget: "email_input"},
		{Name: "fruit", Label: "fruit", Class: "choice", Position: 3, Widget: "select",
			Choices: []types.Choice{{Value: "a", Label: "Apple"}, {Value: "b", Label: "Banana"}}},
		{Name: "country", Label: "country", Class: "model_choice", Position: 4, Widget: "select",
			Choices: []types.Choice{{Value: "1", Label: "Armenia"}, {Value: "2", Label: "Russia"}}},
	}
	if diff := cmp.Diff(want, list); diff != "" {
		t.Errorf("field list mismatch (-want +got):\n%s", diff)
	}
}

func TestEveryFieldTypeHasConstructor(t *testing.T) {
	for _, ft := range types.FieldTypes() {
		assert.Contains(t, fieldConstructors, ft)
	}
}
