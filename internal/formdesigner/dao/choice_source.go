package dao

import (
	"context"
	"fmt"

	"github.com/aisa-it/formdesigner/internal/formdesigner/config"
	"github.com/aisa-it/formdesigner/internal/formdesigner/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TableChoiceSource читает варианты выбора из внешней таблицы, описанной в реестре моделей.
// Запрос выполняется при каждом обращении, варианты всегда актуальны.
type TableChoiceSource struct {
	db    *gorm.DB
	model config.ChoiceModel
}

func NewTableChoiceSource(db *gorm.DB, model config.ChoiceModel) *TableChoiceSource {
	return &TableChoiceSource{db: db, model: model}
}

// NewTableChoiceSources создает источники для всех моделей реестра.
func NewTableChoiceSources(db *gorm.DB, models []config.ChoiceModel) map[string]*TableChoiceSource {
	res := make(map[string]*TableChoiceSource, len(models))
	for _, m := range models {
		res[m.Name] = NewTableChoiceSource(db, m)
	}
	return res
}

func (s *TableChoiceSource) Name() string {
	return s.model.Name
}

func (s *TableChoiceSource) Choices(ctx context.Context) ([]types.Choice, error) {
	var rows []struct {
		Value string
		Label string
	}
	// Имена таблицы и колонок проверены при загрузке реестра, кавычки расставляет диалект базы
	err := s.db.WithContext(ctx).
		Table(s.model.Table).
		Select("CAST(? AS TEXT) AS value, CAST(? AS TEXT) AS label",
			clause.Column{Name: s.model.ValueColumn},
			clause.Column{Name: s.model.LabelColumn}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: s.model.OrderBy}}).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("choice model %s: %w", s.model.Name, err)
	}

	res := make([]types.Choice, 0, len(rows))
	for _, r := range rows {
		res = append(res, types.Choice{Value: r.Value, Label: r.Label})
	}
	return res, nil
}
