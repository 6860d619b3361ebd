// DAO (Data Access Object) конструктора форм: модели GORM, проверки описаний форм при сохранении, запросы к хранилищу отправок.
//
// Основные возможности:
//   - Модели описаний форм, полей, вариантов выбора, отправок и значений полей.
//   - Проверка описания формы при сохранении (DefinitionError).
//   - Подключение к PostgreSQL или SQLite и миграция схемы.
//   - Источники вариантов выбора из внешних таблиц.
package dao

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofrs/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// GenUUID генерирует новый идентификатор UUIDv4.
func GenUUID() uuid.UUID {
	u2, _ := uuid.NewV4()
	return u2
}

// Models возвращает все модели, которые нужно мигрировать.
func Models() []any {
	return []any{
		&FormDefinition{},
		&FormDefinitionField{},
		&FormDefinitionFieldChoice{},
		&FormSubmission{},
		&FormFieldSubmission{},
		&Template{},
	}
}

// OpenDB открывает соединение с базой выбранного драйвера (postgres или sqlite).
func OpenDB(driver, dsn string, gormCfg *gorm.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres", "":
		dialector = postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: false,
		})
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	if gormCfg == nil {
		gormCfg = &gorm.Config{TranslateError: true}
	}
	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// sqlite пишет в один поток, а база в памяти живет только в своем соединении
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(50)
		sqlDB.SetMaxIdleConns(25)
		sqlDB.SetConnMaxLifetime(time.Hour)
		sqlDB.SetConnMaxIdleTime(time.Minute * 15)
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
