// Пакет содержит определения ошибок API конструктора форм. Каждая ошибка имеет код, HTTP-статус, сообщение и перевод на русский язык.
//
// Основные возможности:
//   - Коды ошибок сгруппированы по тысячам: 1*** общие, 2*** определения форм, 3*** отправки, 4*** почта, 9*** администрирование.
//   - Функция для форматирования сообщений об ошибках с использованием аргументов.
package apierrors

import (
	"fmt"
	"net/http"
	"strings"
)

type DefinedError struct {
	Code       int    `json:"code"`
	StatusCode int    `json:"-"`
	Err        string `json:"error"`
	RuErr      string `json:"ru_error,omitempty"`
}

func (e DefinedError) Error() string {
	return e.Err
}

var (
	// 1*** - generic errors
	ErrGeneric        = DefinedError{Code: 1000, StatusCode: http.StatusInternalServerError, Err: "internal server error", RuErr: "Внутренняя ошибка сервера"}
	ErrBadRequest     = DefinedError{Code: 1001, StatusCode: http.StatusBadRequest, Err: "bad request", RuErr: "Некорректный запрос"}
	ErrEntityToLarge  = DefinedError{Code: 1002, StatusCode: http.StatusRequestEntityTooLarge, Err: "request entity too large", RuErr: "Превышен допустимый размер запроса"}
	ErrRequestInvalid = DefinedError{Code: 1003, StatusCode: http.StatusBadRequest, Err: "validation error: %s", RuErr: "Введены некорректные данные: %s"}
	ErrInvalidID      = DefinedError{Code: 1004, StatusCode: http.StatusBadRequest, Err: "invalid ID", RuErr: "Указан неверный ID"}

	// 2*** - form definition errors
	ErrFormNotFound       = DefinedError{Code: 2001, StatusCode: http.StatusNotFound, Err: "form not found", RuErr: "Форма не найдена"}
	ErrFormAlreadyExist   = DefinedError{Code: 2002, StatusCode: http.StatusConflict, Err: "form with this name already exists", RuErr: "Форма с таким именем уже существует"}
	ErrDefinitionInvalid  = DefinedError{Code: 2003, StatusCode: http.StatusBadRequest, Err: "invalid form definition: %s", RuErr: "Некорректное описание формы: %s"}
	ErrFormTemplateFailed = DefinedError{Code: 2004, StatusCode: http.StatusInternalServerError, Err: "form template failed: %s", RuErr: "Ошибка шаблона формы: %s"}
	ErrChoiceModelFailed  = DefinedError{Code: 2005, StatusCode: http.StatusBadGateway, Err: "choice model query failed", RuErr: "Не удалось получить варианты выбора"}

	// 3*** - submission errors
	ErrSubmissionNotFound = DefinedError{Code: 3001, StatusCode: http.StatusNotFound, Err: "submission not found", RuErr: "Отправка формы не найдена"}
	ErrSubmissionSave     = DefinedError{Code: 3002, StatusCode: http.StatusInternalServerError, Err: "failed to save submission", RuErr: "Не удалось сохранить данные формы"}

	// 4*** - mail errors
	ErrMailDeliveryFailed = DefinedError{Code: 4001, StatusCode: http.StatusBadGateway, Err: "failed to deliver form data by email", RuErr: "Не удалось отправить данные формы по почте"}

	// 9*** - admin errors
	ErrAdminUnauthorized = DefinedError{Code: 9001, StatusCode: http.StatusUnauthorized, Err: "admin token is required", RuErr: "Требуется токен администратора"}
)

func (e DefinedError) WithFormattedMessage(args ...interface{}) DefinedError {
	if len(args) > 0 {
		e.Err = fmt.Sprintf(e.Err, args...)
		e.RuErr = fmt.Sprintf(e.RuErr, args...)
	} else {
		e.Err = strings.TrimSuffix(strings.Replace(e.Err, "%s", "", -1), ": ")
		e.RuErr = strings.TrimSuffix(strings.Replace(e.RuErr, "%s", "", -1), ": ")
	}
	return e
}
