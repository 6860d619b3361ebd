// Обработка отправок форм: определение состояния запроса, проверка данных, сохранение отправки,
// письмо с результатами и выбор дальнейшего показа формы.
//
// Основные возможности:
//   - Конечный автомат: первый показ, успешная отправка, отправка с ошибками.
//   - Сохранение отправки одной транзакцией, только для полей, включаемых в результаты.
//   - Подстановка значений полей в шаблоны получателей, отправителя, темы и текста письма.
//   - Счетчик обработанных отправок для Prometheus.
package business

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/aisa-it/formdesigner/internal/formdesigner/dao"
	"github.com/aisa-it/formdesigner/internal/formdesigner/dto"
	"github.com/aisa-it/formdesigner/internal/formdesigner/forms"
	"github.com/aisa-it/formdesigner/internal/formdesigner/notifications"
	stack_error "github.com/aisa-it/formdesigner/internal/formdesigner/stack-error"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

type State string

const (
	StateInitial State = "initial"
	StateValid   State = "valid"
	StateInvalid State = "invalid"
)

const (
	DefaultSuccessMessage = "Thank you, the data was submitted successfully."
	DefaultErrorMessage   = "The data could not be submitted, please try again."
)

var ErrSubmissionSave = errors.New("save submission")

// Request - данные HTTP-запроса, нужные для обработки формы.
type Request struct {
	Method string
	Query  url.Values
	// Тело POST-запроса
	Data url.Values
	// Форма встроена в другую страницу, перенаправление после отправки не выполняется
	Embedded bool
}

type Result struct {
	State       State
	Message     string
	Form        *forms.Form
	Definition  *dao.FormDefinition
	RedirectURL string
	Submission  *dao.FormSubmission
}

type Processor struct {
	db           *gorm.DB
	materializer *forms.Materializer
	mailer       notifications.Mailer

	submissions *prometheus.CounterVec
}

// NewProcessor создает обработчик. Счетчик отправок регистрируется в reg, если он задан.
func NewProcessor(db *gorm.DB, materializer *forms.Materializer, mailer notifications.Mailer, reg prometheus.Registerer) *Processor {
	return &Processor{
		db:           db,
		materializer: materializer,
		mailer:       mailer,
		submissions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "formdesigner",
			Name:      "submissions_total",
			Help:      "Processed form submissions by form and result.",
		}, []string{"form", "state"}),
	}
}

// isSubmission - запрос пришел методом формы и содержит маркер отправки.
func (p *Processor) isSubmission(def *dao.FormDefinition, req Request) (url.Values, bool) {
	if !strings.EqualFold(req.Method, def.Method) {
		return nil, false
	}
	values := req.Data
	if def.Method == dao.MethodGET {
		values = req.Query
	}
	return values, values.Get(p.materializer.MarkerName(def)) != ""
}

// Process обрабатывает запрос к форме. Ошибки проверки полей остаются в форме,
// наружу возвращаются ошибки описания формы, хранилища и почты.
func (p *Processor) Process(ctx context.Context, def *dao.FormDefinition, req Request) (*Result, error) {
	res := &Result{State: StateInitial, Definition: def}

	values, submitted := p.isSubmission(def, req)
	if !submitted {
		var initial url.Values
		if def.AllowGetInitial {
			initial = req.Query
		}
		form, err := p.materializer.New(ctx, def, initial)
		if err != nil {
			return nil, stack_error.TrackErrorStack(err).AddContext("form", def.Name)
		}
		res.Form = form
		return res, nil
	}

	form, err := p.materializer.Bind(ctx, def, values)
	if err != nil {
		return nil, stack_error.TrackErrorStack(err).AddContext("form", def.Name)
	}
	res.Form = form

	if !form.IsValid() {
		res.State = StateInvalid
		res.Message = def.ErrorMessage
		if res.Message == "" {
			res.Message = DefaultErrorMessage
		}
		p.submissions.WithLabelValues(def.Name, string(res.State)).Inc()
		return res, nil
	}

	res.State = StateValid
	res.Message = def.SuccessMessage
	if res.Message == "" {
		res.Message = DefaultSuccessMessage
	}
	p.submissions.WithLabelValues(def.Name, string(res.State)).Inc()

	if def.LogData {
		if res.Submission, err = p.Log(ctx, def, form); err != nil {
			return nil, stack_error.TrackErrorStack(err).AddContext("form", def.Name)
		}
	}

	if err := p.SendMail(ctx, def, form); err != nil {
		return nil, stack_error.TrackErrorStack(err).AddContext("form", def.Name)
	}

	switch {
	case def.SuccessRedirect && !req.Embedded:
		res.RedirectURL = def.Action
		if res.RedirectURL == "" {
			res.RedirectURL = "?"
		}
	case def.SuccessClear:
		if res.Form, err = p.materializer.New(ctx, def, nil); err != nil {
			return nil, stack_error.TrackErrorStack(err).AddContext("form", def.Name)
		}
	}
	return res, nil
}

// Log сохраняет отправку и значения полей, включаемых в результаты.
func (p *Processor) Log(ctx context.Context, def *dao.FormDefinition, form *forms.Form) (*dao.FormSubmission, error) {
	cleaned := form.CleanedData()
	submission := &dao.FormSubmission{FormDefinitionId: def.ID}
	for _, f := range form.Fields {
		if !f.Def.IncludeResult {
			continue
		}
		submission.Values = append(submission.Values, dao.FormFieldSubmission{
			FormDefinitionFieldId: f.Def.ID,
			Value:                 forms.ToStorable(cleaned[f.Name]),
		})
	}

	if err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(submission).Error
	}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSubmissionSave, err)
	}
	slog.Debug("Form submission saved", "form", def.Name, "submission", submission.ID, "values", len(submission.Values))
	return submission, nil
}

func (res *Result) ToDTO() *dto.FormContext {
	c := &dto.FormContext{
		State:          string(res.State),
		Message:        res.Message,
		FormDefinition: res.Definition.ToLightDTO(),
		Redirect:       res.RedirectURL,
	}
	if res.Form != nil {
		c.Form = res.Form.ToDTO()
	}
	if res.Submission != nil {
		c.SubmissionID = res.Submission.ID.String()
	}
	return c
}
