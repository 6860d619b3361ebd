// Ответы API с ошибками и их запись в журнал.
//
// Основные возможности:
//   - Единый формат ответа с ошибкой (apierrors.DefinedError).
//   - Запись ошибок в журнал с методом, адресом и местом вызова.
//   - Перевод ошибок обработки форм (описание, источник вариантов, хранилище, почта) в ошибки API.
package formdesigner

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"runtime"

	"github.com/aisa-it/formdesigner/internal/formdesigner/apierrors"
	"github.com/aisa-it/formdesigner/internal/formdesigner/business"
	"github.com/aisa-it/formdesigner/internal/formdesigner/dao"
	"github.com/aisa-it/formdesigner/internal/formdesigner/forms"
	"github.com/aisa-it/formdesigner/internal/formdesigner/notifications"
	stack_error "github.com/aisa-it/formdesigner/internal/formdesigner/stack-error"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// Возврат ошибки 500 с универсальным сообщением
func EError(c echo.Context, err error) error {
	if customErr, ok := err.(apierrors.DefinedError); ok {
		return EErrorDefined(c, customErr)
	}
	if err == nil {
		slog.Error("Unknown API error",
			"method", c.Request().Method,
			"url", c.Request().URL,
			getCallerFile(),
		)
	} else {
		slog.Error("API error",
			"err", err,
			"method", c.Request().Method,
			"url", c.Request().URL,
			getCallerFile(),
		)
	}
	return EErrorDefined(c, apierrors.ErrGeneric)
}

// Возврат ошибки <status> с сообщением ошибки (404 не логируется)
func EErrorMsgStatus(c echo.Context, err error, status int) error {
	if status == http.StatusRequestEntityTooLarge {
		return EErrorDefined(c, apierrors.ErrEntityToLarge)
	}

	er := apierrors.ErrGeneric
	er.StatusCode = status
	if err == nil {
		if status != http.StatusNotFound {
			slog.Error("Unknown API error",
				"method", c.Request().Method,
				slog.Int("status", status),
				"url", c.Request().URL,
				getCallerFile(),
			)
		}
		er.Err = http.StatusText(status)
		return EErrorDefined(c, er)
	}

	if status != http.StatusNotFound {
		slog.Error("API error",
			"err", err,
			"method", c.Request().Method,
			slog.Int("status", status),
			"url", c.Request().URL,
			getCallerFile(),
		)
	}
	er.Err = err.Error()
	return EErrorDefined(c, er)
}

// EErrorDefined возвращает JSON-ответ с кодом статуса и сообщением ошибки. Для неизвестного кода статуса используется 400.
func EErrorDefined(c echo.Context, err apierrors.DefinedError) error {
	if http.StatusText(err.StatusCode) == "" {
		err.StatusCode = http.StatusBadRequest
	}
	return c.JSON(err.StatusCode, err)
}

// DefineError сопоставляет ошибку обработки формы или хранилища с ошибкой API.
// Ошибки, которые не ожидаются в нормальной работе, пишутся в журнал вместе со стеком.
func DefineError(c echo.Context, err error) apierrors.DefinedError {
	var (
		defined      apierrors.DefinedError
		definition   dao.DefinitionError
		transportErr *notifications.TransportError
		sourceErr    *forms.ChoiceSourceError
	)
	switch {
	case errors.As(err, &defined):
		return defined
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apierrors.ErrFormNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apierrors.ErrFormAlreadyExist
	case errors.As(err, &definition):
		return apierrors.ErrDefinitionInvalid.WithFormattedMessage(definition.Error())
	case errors.As(err, &transportErr):
		stack_error.GetError(c, err)
		return apierrors.ErrMailDeliveryFailed
	case errors.As(err, &sourceErr):
		stack_error.GetError(c, err)
		return apierrors.ErrChoiceModelFailed
	case errors.Is(err, business.ErrSubmissionSave):
		stack_error.GetError(c, err)
		return apierrors.ErrSubmissionSave
	}
	stack_error.GetError(c, err)
	return apierrors.ErrGeneric
}

// getCallerFile возвращает имя файла и строку, из которых была вызвана функция-обработчик ошибки.
func getCallerFile() slog.Attr {
	_, path, no, ok := runtime.Caller(2)
	if !ok {
		return slog.Attr{}
	}
	_, file := filepath.Split(path)
	return slog.String("caller", fmt.Sprintf("%s:%d", file, no))
}
