package dao

import (
	"time"

	"gorm.io/gorm"
)

// Template - шаблон, хранимый в базе под именем-путем (например formdefinition/detail.html).
type Template struct {
	Id        string    `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null"`
	Template  string    `json:"template"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Template) TableName() string { return "templates" }

func (temp *Template) BeforeCreate(tx *gorm.DB) error {
	if temp.Id == "" {
		temp.Id = GenUUID().String()
	}
	return nil
}

// GetTemplate находит шаблон по имени. Если шаблона нет, возвращается gorm.ErrRecordNotFound.
func GetTemplate(db *gorm.DB, name string) (*Template, error) {
	var temp Template
	if err := db.Where("name = ?", name).First(&temp).Error; err != nil {
		return nil, err
	}
	return &temp, nil
}
