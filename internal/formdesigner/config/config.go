// Конфигурация сервиса конструктора форм.
// Значения берутся из переменных окружения (тег env), перед этим подгружается файл .env, если он есть.
//
// Основные возможности:
//   - Загрузка конфигурации из переменных окружения с использованием тегов struct.
//   - Маскировка секретных значений в логах.
//   - Значения по умолчанию для шаблонов форм, имени маркера отправки и SMTP.
//   - Загрузка реестра внешних моделей для полей выбора из YAML.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultSubmitFlagFormat = "%s_submit"
	DefaultFormTemplate     = "formdefinition/forms/as_p.html"
	DefaultListenAddr       = ":8080"
	DefaultEmailFrom        = "webmaster@localhost"
)

var BuiltinFormTemplates = []string{
	"formdefinition/forms/as_p.html",
	"formdefinition/forms/as_table.html",
	"formdefinition/forms/as_ul.html",
}

type Config struct {
	DatabaseDriver string `env:"DATABASE_DRIVER"`
	DatabaseDSN    string `env:"DATABASE_URL"`

	ListenAddr string `env:"LISTEN_ADDR"`
	AdminToken string `env:"ADMIN_TOKEN"`

	EmailDisabled bool   `env:"EMAIL_DISABLED"`
	EmailHost     string `env:"EMAIL_HOST"`
	EmailUser     string `env:"EMAIL_HOST_USER"`
	EmailPassword string `env:"EMAIL_HOST_PASSWORD"`
	EmailPort     int    `env:"EMAIL_PORT"`
	EmailFrom     string `env:"EMAIL_FROM"`

	SubmitFlagFormat    string `env:"FORM_SUBMIT_FLAG_NAME"`
	DefaultFormTemplate string `env:"FORM_DEFAULT_TEMPLATE"`
	FormTemplatesRaw    string `env:"FORM_TEMPLATES"`
	FormTemplates       []string

	ChoiceModelsPath string `env:"CHOICE_MODELS_FILE"`
	ChoiceModels     []ChoiceModel

	SubmissionsRetentionDays int `env:"SUBMISSIONS_RETENTION_DAYS"`
}

// ReadConfig загружает конфигурацию из окружения. При отсутствии обязательных значений приложение завершается с ошибкой.
func ReadConfig() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Fail to load .env file", "err", err)
	}

	config := &Config{}
	envConfig("env", config)

	if config.DatabaseDSN == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	if config.ChoiceModelsPath != "" {
		models, err := LoadChoiceModels(config.ChoiceModelsPath)
		if err != nil {
			slog.Error("CHOICE_MODELS_FILE incorrect", "path", config.ChoiceModelsPath, "err", err)
			os.Exit(1)
		}
		config.ChoiceModels = models
	}

	if err := config.SetDefaults(); err != nil {
		slog.Error("Config incorrect", "err", err)
		os.Exit(1)
	}

	return config
}

// SetDefaults заполняет незаданные значения и проверяет согласованность настроек форм.
func (c *Config) SetDefaults() error {
	if c.DatabaseDriver == "" {
		c.DatabaseDriver = "postgres"
	}
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if c.EmailFrom == "" {
		c.EmailFrom = DefaultEmailFrom
	}
	if c.EmailPort <= 0 {
		c.EmailPort = 25
	}

	if c.SubmitFlagFormat == "" {
		c.SubmitFlagFormat = DefaultSubmitFlagFormat
	}
	if strings.Count(c.SubmitFlagFormat, "%s") != 1 || strings.Count(c.SubmitFlagFormat, "%") != 1 {
		return fmt.Errorf("FORM_SUBMIT_FLAG_NAME must contain exactly one %%s, got %q", c.SubmitFlagFormat)
	}

	if len(c.FormTemplates) == 0 {
		c.FormTemplates = SplitList(c.FormTemplatesRaw)
	}
	if len(c.FormTemplates) == 0 {
		c.FormTemplates = append([]string(nil), BuiltinFormTemplates...)
	}
	if c.DefaultFormTemplate == "" {
		c.DefaultFormTemplate = DefaultFormTemplate
	}
	if !c.HasFormTemplate(c.DefaultFormTemplate) {
		return fmt.Errorf("default form template %q is not in FORM_TEMPLATES", c.DefaultFormTemplate)
	}

	if c.SubmissionsRetentionDays < 0 {
		c.SubmissionsRetentionDays = 0
	}
	return nil
}

func (c *Config) HasFormTemplate(name string) bool {
	for _, t := range c.FormTemplates {
		if t == name {
			return true
		}
	}
	return false
}

// Присваивает полям в переданной структуре значения переменных. Название переменной для каждого поля лежит в теге этого поля.
func envConfig(key string, s interface{}) {
	v := reflect.ValueOf(s).Elem()
	typeParam := v.Type()
	for i := 0; i < v.NumField(); i++ {
		fName := typeParam.Field(i).Name
		fEnvTag := typeParam.Field(i).Tag.Get(key)

		if fEnvTag == "" || !Exist(fEnvTag) {
			continue
		}

		value := GetEnv(fEnvTag)
		if value == "" {
			continue
		}

		slog.Info("Set config value",
			slog.String("key", typeParam.Name()+"."+fName),
			slog.String("value", maskSecret(fName, value)),
			slog.String("source", "ENVIRONMENT"),
		)

		switch v.Field(i).Interface().(type) {
		case string:
			v.Field(i).SetString(value)
		case int:
			v.Field(i).SetInt(int64(GetIntEnv(fEnvTag)))
		case bool:
			v.Field(i).SetBool(GetBoolEnv(fEnvTag))
		}
	}
}

// Строка подключения к базе содержит пароль
var secretMarkers = []string{"pass", "secret", "token", "dsn"}

func maskSecret(fieldName, value string) string {
	name := strings.ToLower(fieldName)
	if !slices.ContainsFunc(secretMarkers, func(m string) bool { return strings.Contains(name, m) }) {
		return value
	}
	runes := []rune(value)
	if len(runes) <= 2 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[0]) + strings.Repeat("*", len(runes)-2) + string(runes[len(runes)-1])
}
