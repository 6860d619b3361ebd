package forms

import (
	"bytes"
	"html/template"
	"log/slog"
	"slices"
	"strconv"

	"github.com/aisa-it/formdesigner/internal/formdesigner/types"
)

var widgetTemplates = template.Must(template.New("widgets").Parse(`
{{- define "input" -}}
<input type="{{.Type}}" name="{{.Name}}" id="{{.ID}}"{{if .Value}} value="{{.Value}}"{{end}}{{if .Step}} step="{{.Step}}"{{end}}{{if .MaxLength}} maxlength="{{.MaxLength}}"{{end}}{{if .Required}} required{{end}}>
{{- end -}}

{{- define "checkbox" -}}
<input type="checkbox" name="{{.Name}}" id="{{.ID}}"{{if .Checked}} checked{{end}}{{if .Required}} required{{end}}>
{{- end -}}

{{- define "textarea" -}}
<textarea name="{{.Name}}" cols="40" rows="10" id="{{.ID}}"{{if .MaxLength}} maxlength="{{.MaxLength}}"{{end}}{{if .Required}} required{{end}}>
{{.Value}}</textarea>
{{- end -}}

{{- define "select" -}}
<select name="{{.Name}}" id="{{.ID}}"{{if .Multiple}} multiple{{end}}{{if .Required}} required{{end}}>
{{- range .Options}}
  <option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>
{{- end}}
</select>
{{- end -}}

{{- define "choices" -}}
<div id="{{.ID}}">
{{- range .Options}}
  <div><label for="{{.ID}}"><input type="{{$.Type}}" name="{{$.Name}}" value="{{.Value}}" id="{{.ID}}"{{if .Selected}} checked{{end}}{{if $.Required}} required{{end}}> {{.Label}}</label></div>
{{- end}}
</div>
{{- end -}}

{{- define "marker" -}}
<input type="hidden" name="{{.}}" value="1">
{{- end -}}
`))

type widgetOption struct {
	ID       string
	Value    string
	Label    string
	Selected bool
}

type widgetContext struct {
	Name      string
	ID        string
	Type      string
	Value     string
	Step      string
	MaxLength int
	Required  bool
	Checked   bool
	Multiple  bool
	Options   []widgetOption
}

var inputTypes = map[types.Widget]string{
	types.WidgetTextInput:     "text",
	types.WidgetPasswordInput: "password",
	types.WidgetHiddenInput:   "hidden",
	types.WidgetEmailInput:    "email",
	types.WidgetURLInput:      "url",
	types.WidgetNumberInput:   "number",
	types.WidgetDateInput:     "date",
}

func execWidget(name string, data any) template.HTML {
	var buf bytes.Buffer
	if err := widgetTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("Render widget", "template", name, "err", err)
		return ""
	}
	return template.HTML(buf.String())
}

func renderMarker(name string) template.HTML {
	return execWidget("marker", name)
}

func (f *Field) widgetContext() widgetContext {
	values := f.Values()
	ctx := widgetContext{
		Name: f.Name,
		ID:   f.ID(),
		// скрытые поля и группы флажков не помечаются required: браузер не даст их отправить
		Required: f.Required && f.Widget != types.WidgetHiddenInput && f.Widget != types.WidgetCheckboxSelectMultiple,
		Multiple: f.Widget.IsMultiple(),
	}
	if len(values) > 0 {
		ctx.Value = values[0]
	}
	if f.Def != nil && f.Def.MaxLength != nil && f.Type.HasLength() {
		ctx.MaxLength = *f.Def.MaxLength
	}
	if f.Type == types.FieldDecimal {
		ctx.Step = "any"
	}
	if f.Widget.HasOptions() {
		ctx.Options = f.options(values)
	}
	return ctx
}

func (f *Field) options(selected []string) []widgetOption {
	var res []widgetOption
	if f.EmptyLabel != "" && f.Widget == types.WidgetSelect {
		res = append(res, widgetOption{Value: "", Label: f.EmptyLabel, Selected: len(selected) == 0})
	}
	for _, c := range f.Choices {
		res = append(res, widgetOption{
			Value:    c.Value,
			Label:    c.Label,
			Selected: slices.Contains(selected, c.Value),
		})
	}
	for i := range res {
		res[i].ID = f.ID() + "_" + strconv.Itoa(i)
	}
	return res
}

func renderWidget(f *Field) template.HTML {
	ctx := f.widgetContext()
	switch f.Widget {
	case types.WidgetTextarea:
		return execWidget("textarea", ctx)
	case types.WidgetCheckboxInput:
		ctx.Checked = len(f.Values()) > 0 && parseBool(f.Values()[0])
		return execWidget("checkbox", ctx)
	case types.WidgetSelect, types.WidgetSelectMultiple:
		return execWidget("select", ctx)
	case types.WidgetRadioSelect:
		ctx.Type = "radio"
		return execWidget("choices", ctx)
	case types.WidgetCheckboxSelectMultiple:
		ctx.Type = "checkbox"
		return execWidget("choices", ctx)
	case types.WidgetPasswordInput:
		ctx.Value = ""
	}
	ctx.Type = inputTypes[f.Widget]
	if ctx.Type == "" {
		ctx.Type = "text"
	}
	return execWidget("input", ctx)
}
