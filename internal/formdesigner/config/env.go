// Чтение переменных окружения для конфигурации сервиса форм.
package config

import (
	"os"
	"strconv"
	"strings"
)

// Exist - возвращает true, если переменная окружения key задана
func Exist(key string) bool {
	_, exist := os.LookupEnv(key)
	return exist
}

// GetEnv - возвращает строковое значение переменной окружения.
func GetEnv(key string) string {
	val, _ := os.LookupEnv(key)
	return strings.TrimSpace(val)
}

// GetIntEnv - возвращает числовое значение переменной. При ошибке разбора возвращается 0
func GetIntEnv(key string) int {
	v, err := strconv.Atoi(GetEnv(key))
	if err != nil {
		return 0
	}
	return v
}

// GetBoolEnv - возвращает логическое значение переменной. При ошибке разбора возвращается false
func GetBoolEnv(key string) bool {
	v, err := strconv.ParseBool(GetEnv(key))
	if err != nil {
		return false
	}
	return v
}

// SplitList разбивает список, разделенный запятыми, отбрасывая пустые элементы.
func SplitList(raw string) []string {
	var res []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			res = append(res, part)
		}
	}
	return res
}
