// Основной пакет конструктора форм. Отвечает за чтение конфигурации, подключение к базе данных,
// миграцию моделей, заполнение шаблонов по умолчанию и запуск HTTP-сервера.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aisa-it/formdesigner/internal/formdesigner"
	"github.com/aisa-it/formdesigner/internal/formdesigner/config"
	"github.com/aisa-it/formdesigner/internal/formdesigner/dao"
	"github.com/aisa-it/formdesigner/internal/formdesigner/gormlogger"
	"github.com/aisa-it/formdesigner/internal/formdesigner/templates"
	"gorm.io/gorm"
)

var version string = "DEV"

// Пример запуска: go run main.go --noMigration --trace
func main() {
	noTranslateFlag := flag.Bool("noTranslate", false, "Turn off BD errors translate")
	paramQueries := flag.Bool("paramQueries", true, "Mask queries params in log")
	noMigration := flag.Bool("noMigration", false, "Turn off DB migration")
	trace := flag.Bool("trace", false, "Verbose logs and sql trace")
	flag.Parse()

	PrintBanner()

	if *trace {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	// Set prod log format
	if version != "DEV" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{})))
	}

	cfg := config.ReadConfig()

	slog.Info("FormDesigner start.")

	db, err := dao.OpenDB(cfg.DatabaseDriver, cfg.DatabaseDSN, &gorm.Config{
		TranslateError: !*noTranslateFlag,
		Logger:         gormlogger.NewGormLogger(slog.Default(), time.Second*4, *paramQueries),
	})
	if err != nil {
		slog.Error("Fail init DB connection", "err", err)
		os.Exit(1)
	}

	if !*noMigration {
		slog.Info("Migrate models")
		if err := dao.Migrate(db); err != nil {
			slog.Error("Migration failed", "err", err)
			os.Exit(1)
		}
	}

	if err := db.Transaction(templates.Seed); err != nil {
		slog.Error("Fail seed default templates", "err", err)
		os.Exit(1)
	}

	if err := formdesigner.Server(db, cfg, version); err != nil {
		slog.Error("Server stopped with error", "err", err)
		os.Exit(1)
	}
}

// PrintBanner выводит заголовок приложения с версией.
func PrintBanner() {
	banner := `
 _____                     ____            _
|  ___|__  _ __ _ __ ___  |  _ \  ___  ___(_) __ _ _ __   ___ _ __
| |_ / _ \| '__| '_ ' _ \ | | | |/ _ \/ __| |/ _' | '_ \ / _ \ '__|
|  _| (_) | |  | | | | | || |_| |  __/\__ \ | (_| | | | |  __/ |
|_|  \___/|_|  |_| |_| |_||____/ \___||___/_|\__, |_| |_|\___|_| %s
Forms described in the database, rendered, validated and mailed  |___/
----------------------------------------------------------------
`
	colorReset := "\033[0m"
	colorYellow := "\033[33m"

	formattedVersion := version
	if version == "DEV" {
		formattedVersion = colorYellow + version + colorReset
	}

	fmt.Printf(banner, formattedVersion)
}
