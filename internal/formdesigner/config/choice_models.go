package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

var identRegexp = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ChoiceModel описывает внешнюю таблицу, строки которой служат вариантами выбора для полей model_choice.
//
// Пример файла:
//
//	models:
//	  - name: countries
//	    table: countries
//	    value_column: code
//	    label_column: name
//	    order_by: name
type ChoiceModel struct {
	Name        string `yaml:"name"`
	Table       string `yaml:"table"`
	ValueColumn string `yaml:"value_column"`
	LabelColumn string `yaml:"label_column"`
	OrderBy     string `yaml:"order_by"`
}

type choiceModelsFile struct {
	Models []ChoiceModel `yaml:"models"`
}

// LoadChoiceModels читает реестр моделей выбора из YAML-файла.
func LoadChoiceModels(path string) ([]ChoiceModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseChoiceModels(data)
}

// ParseChoiceModels разбирает и проверяет реестр моделей выбора.
func ParseChoiceModels(data []byte) ([]ChoiceModel, error) {
	var f choiceModelsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(f.Models))
	for i := range f.Models {
		m := &f.Models[i]
		if m.Name == "" {
			return nil, fmt.Errorf("choice model #%d: name is required", i+1)
		}
		if _, ok := seen[m.Name]; ok {
			return nil, fmt.Errorf("choice model %q: duplicate name", m.Name)
		}
		seen[m.Name] = struct{}{}

		if m.Table == "" {
			m.Table = m.Name
		}
		if m.ValueColumn == "" {
			m.ValueColumn = "id"
		}
		if m.LabelColumn == "" {
			m.LabelColumn = "name"
		}
		if m.OrderBy == "" {
			m.OrderBy = m.LabelColumn
		}
		for _, ident := range []string{m.Table, m.ValueColumn, m.LabelColumn, m.OrderBy} {
			if !identRegexp.MatchString(ident) {
				return nil, fmt.Errorf("choice model %q: invalid identifier %q", m.Name, ident)
			}
		}
	}
	return f.Models, nil
}
