package types

import "fmt"

type Widget string

const (
	WidgetDefault                Widget = ""
	WidgetTextInput              Widget = "text_input"
	WidgetTextarea               Widget = "textarea"
	WidgetPasswordInput          Widget = "password_input"
	WidgetHiddenInput            Widget = "hidden_input"
	WidgetEmailInput             Widget = "email_input"
	WidgetURLInput               Widget = "url_input"
	WidgetNumberInput            Widget = "number_input"
	WidgetDateInput              Widget = "date_input"
	WidgetCheckboxInput          Widget = "checkbox_input"
	WidgetSelect                 Widget = "select"
	WidgetSelectMultiple         Widget = "select_multiple"
	WidgetRadioSelect            Widget = "radio_select"
	WidgetCheckboxSelectMultiple Widget = "checkbox_select_multiple"
)

var widgets = []Widget{
	WidgetTextInput,
	WidgetTextarea,
	WidgetPasswordInput,
	WidgetHiddenInput,
	WidgetEmailInput,
	WidgetURLInput,
	WidgetNumberInput,
	WidgetDateInput,
	WidgetCheckboxInput,
	WidgetSelect,
	WidgetSelectMultiple,
	WidgetRadioSelect,
	WidgetCheckboxSelectMultiple,
}

func Widgets() []Widget {
	return append([]Widget(nil), widgets...)
}

// ParseWidget принимает пустую строку как виджет по умолчанию для типа поля.
func ParseWidget(s string) (Widget, error) {
	w := Widget(s)
	if !w.IsValid() {
		return "", fmt.Errorf("unknown widget %q", s)
	}
	return w, nil
}

func (w Widget) IsValid() bool {
	if w == WidgetDefault {
		return true
	}
	for _, known := range widgets {
		if known == w {
			return true
		}
	}
	return false
}

func (w Widget) String() string {
	return string(w)
}

// IsMultiple - виджет отправляет несколько значений под одним именем
func (w Widget) IsMultiple() bool {
	return w == WidgetSelectMultiple || w == WidgetCheckboxSelectMultiple
}

// HasOptions - виджет отображает список вариантов
func (w Widget) HasOptions() bool {
	return w == WidgetSelect || w == WidgetRadioSelect || w.IsMultiple()
}

// Resolve возвращает виджет, фактически используемый для поля типа t.
func (w Widget) Resolve(t FieldType) Widget {
	if w == WidgetDefault {
		return t.DefaultWidget()
	}
	return w
}
