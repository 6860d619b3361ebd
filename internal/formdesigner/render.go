package formdesigner

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/aisa-it/formdesigner/internal/formdesigner/business"
	"github.com/aisa-it/formdesigner/internal/formdesigner/forms"
	"github.com/aisa-it/formdesigner/internal/formdesigner/templates"
	"gorm.io/gorm"
)

// pageContext - данные страницы формы: сообщение, форма и описание формы.
type pageContext struct {
	Title       string
	Description template.HTML
	Message     string
	State       business.State
	Form        *forms.Form
	Action      string
	Method      string
}

type pageRenderer struct {
	db              *gorm.DB
	defaultTemplate string
}

// formTemplate возвращает шаблон формы из описания или шаблон по умолчанию.
func (r *pageRenderer) formTemplate(name string) string {
	if name == "" {
		return r.defaultTemplate
	}
	return name
}

func (r *pageRenderer) load(name string) (string, error) {
	text, ok := templates.Get(r.db, name)
	if !ok {
		return "", fmt.Errorf("template %s not found", name)
	}
	return text, nil
}

// Render собирает страницу формы: шаблон страницы и подключенный к нему под именем "form" шаблон формы.
func (r *pageRenderer) Render(res *business.Result) ([]byte, error) {
	def := res.Definition
	page, err := r.load(templates.DetailTemplate)
	if err != nil {
		return nil, err
	}
	formName := r.formTemplate(def.FormTemplateName)
	form, err := r.load(formName)
	if err != nil {
		return nil, err
	}

	tpl, err := template.New(templates.DetailTemplate).Parse(page)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", templates.DetailTemplate, err)
	}
	if _, err := tpl.New("form").Parse(form); err != nil {
		return nil, fmt.Errorf("parse %s: %w", formName, err)
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, pageContext{
		Title:       def.DisplayTitle(),
		Description: template.HTML(def.Description),
		Message:     res.Message,
		State:       res.State,
		Form:        res.Form,
		Action:      def.Action,
		Method:      def.Method,
	}); err != nil {
		return nil, fmt.Errorf("execute %s: %w", templates.DetailTemplate, err)
	}
	return buf.Bytes(), nil
}
