// Административное API конструктора форм: описания форм, поля, варианты выбора и сохраненные отправки.
// Доступ по токену ADMIN_TOKEN в заголовке Authorization: Bearer <token>.
package formdesigner

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/aisa-it/formdesigner/internal/formdesigner/apierrors"
	"github.com/aisa-it/formdesigner/internal/formdesigner/dao"
	"github.com/aisa-it/formdesigner/internal/formdesigner/dto"
	"github.com/aisa-it/formdesigner/internal/formdesigner/types"
	"github.com/gofrs/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultSubmissionsLimit = 100
	maxSubmissionsLimit     = 1000
)

type SubmissionContext struct {
	echo.Context
	Submission *dao.FormSubmission
}

// AdminAuthMiddleware проверяет токен администратора.
func AdminAuthMiddleware(token string) echo.MiddlewareFunc {
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		KeyLookup:  "header:" + echo.HeaderAuthorization,
		AuthScheme: "Bearer",
		Validator: func(key string, c echo.Context) (bool, error) {
			return subtle.ConstantTimeCompare([]byte(key), []byte(token)) == 1, nil
		},
		ErrorHandler: func(err error, c echo.Context) error {
			return EErrorDefined(c, apierrors.ErrAdminUnauthorized)
		},
	})
}

func (s *Services) SubmissionMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := uuid.FromString(c.Param("submissionId"))
		if err != nil {
			return EErrorDefined(c, apierrors.ErrInvalidID)
		}
		submission, err := dao.GetSubmission(s.db, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return EErrorDefined(c, apierrors.ErrSubmissionNotFound)
			}
			return EError(c, err)
		}
		return next(SubmissionContext{c, submission})
	}
}

func (s *Services) AddAdminServices(g *echo.Group) {
	g.GET("field-types/", s.getFieldTypes)

	g.GET("forms/", s.getFormList)
	g.POST("forms/", s.createForm)

	formGroup := g.Group("forms/:name", s.FormDefinitionMiddleware)
	formGroup.GET("/", s.getForm)
	formGroup.PUT("/", s.updateForm)
	formGroup.DELETE("/", s.deleteForm)
	formGroup.GET("/fields/", s.getFormFields)
	formGroup.GET("/submissions/", s.getSubmissionList)

	submissionGroup := g.Group("submissions/:submissionId", s.SubmissionMiddleware)
	submissionGroup.GET("/", s.getSubmission)
	submissionGroup.DELETE("/", s.deleteSubmission)
}

// getFieldTypes: типы полей и виджеты
func (s *Services) getFieldTypes(c echo.Context) error {
	res := dto.FieldTypes{}
	for _, t := range types.FieldTypes() {
		res.FieldTypes = append(res.FieldTypes, t.String())
	}
	for _, w := range types.Widgets() {
		res.Widgets = append(res.Widgets, w.String())
	}
	return c.JSON(http.StatusOK, res)
}

// getFormList: список форм
func (s *Services) getFormList(c echo.Context) error {
	defs, err := dao.ListFormDefinitions(s.db)
	if err != nil {
		return EError(c, err)
	}
	res := make([]dto.FormDefinitionLight, 0, len(defs))
	for i := range defs {
		res = append(res, *defs[i].ToLightDTO())
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Services) bindDefinitionRequest(c echo.Context) (*dto.FormDefinitionRequest, error) {
	var req dto.FormDefinitionRequest
	if err := c.Bind(&req); err != nil {
		return nil, apierrors.ErrBadRequest
	}
	if err := c.Validate(&req); err != nil {
		return nil, apierrors.ErrRequestInvalid.WithFormattedMessage(err.Error())
	}
	return &req, nil
}

// createForm: создать форму
func (s *Services) createForm(c echo.Context) error {
	req, err := s.bindDefinitionRequest(c)
	if err != nil {
		return EError(c, err)
	}

	def := definitionFromRequest(req)
	if err := s.materializer.CheckDefinition(def); err != nil {
		return EErrorDefined(c, DefineError(c, err))
	}
	if err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(def).Error
	}); err != nil {
		return EErrorDefined(c, DefineError(c, err))
	}

	created, err := dao.GetFormDefinition(s.db, def.Name)
	if err != nil {
		return EError(c, err)
	}
	return c.JSON(http.StatusCreated, created.ToDTO())
}

// getForm: получить форму
func (s *Services) getForm(c echo.Context) error {
	def := c.(FormDefinitionContext).Definition
	return c.JSON(http.StatusOK, def.ToDTO())
}

// updateForm: заменить форму. Поля сопоставляются по имени, отсутствующие в запросе удаляются вместе с сохраненными значениями.
func (s *Services) updateForm(c echo.Context) error {
	def := c.(FormDefinitionContext).Definition

	req, err := s.bindDefinitionRequest(c)
	if err != nil {
		return EError(c, err)
	}

	existing := def.GetFieldDict()
	updated := *def
	applyDefinitionRequest(&updated, req)
	updated.Fields = make([]dao.FormDefinitionField, len(req.Fields))
	for i := range req.Fields {
		if old, ok := existing[req.Fields[i].Name]; ok {
			updated.Fields[i] = *old
		} else {
			updated.Fields[i].FormDefinitionId = def.ID
		}
		applyFieldRequest(&updated.Fields[i], &req.Fields[i], i)
		updated.Fields[i].Choices = choicesFromRequest(req.Fields[i].Choices)
	}
	if err := s.materializer.CheckDefinition(&updated); err != nil {
		return EErrorDefined(c, DefineError(c, err))
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(&updated).Error; err != nil {
			return err
		}

		keep := make(map[string]struct{}, len(updated.Fields))
		for i := range updated.Fields {
			field := &updated.Fields[i]
			keep[field.Name] = struct{}{}
			choices := field.Choices
			field.Choices = nil
			if field.ID.IsNil() {
				if err := tx.Create(field).Error; err != nil {
					return err
				}
			} else if err := tx.Omit(clause.Associations).Save(field).Error; err != nil {
				return err
			}
			if err := dao.ReplaceChoices(tx, field, choices); err != nil {
				return err
			}
		}

		for name, field := range existing {
			if _, ok := keep[name]; ok {
				continue
			}
			if err := dao.DeleteField(tx, field); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return EErrorDefined(c, DefineError(c, err))
	}

	res, err := dao.GetFormDefinition(s.db, updated.Name)
	if err != nil {
		return EError(c, err)
	}
	return c.JSON(http.StatusOK, res.ToDTO())
}

// deleteForm: удалить форму
func (s *Services) deleteForm(c echo.Context) error {
	def := c.(FormDefinitionContext).Definition
	if err := s.db.Transaction(func(tx *gorm.DB) error {
		return dao.DeleteFormDefinition(tx, def)
	}); err != nil {
		return EError(c, err)
	}
	return c.NoContent(http.StatusOK)
}

// getFormFields: поля формы
func (s *Services) getFormFields(c echo.Context) error {
	def := c.(FormDefinitionContext).Definition
	list, err := s.materializer.FieldList(c.Request().Context(), def)
	if err != nil {
		return EErrorDefined(c, DefineError(c, err))
	}
	return c.JSON(http.StatusOK, list)
}

// getSubmissionList: отправки формы
func (s *Services) getSubmissionList(c echo.Context) error {
	def := c.(FormDefinitionContext).Definition

	offset, limit := 0, defaultSubmissionsLimit
	if err := echo.QueryParamsBinder(c).
		Int("offset", &offset).
		Int("limit", &limit).
		BindError(); err != nil {
		return EErrorDefined(c, apierrors.ErrBadRequest)
	}
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > maxSubmissionsLimit {
		limit = defaultSubmissionsLimit
	}

	submissions, count, err := dao.ListSubmissions(s.db, def.ID, offset, limit)
	if err != nil {
		return EError(c, err)
	}
	res := dto.SubmissionList{
		Count:  count,
		Offset: offset,
		Limit:  limit,
		Result: make([]dto.FormSubmission, 0, len(submissions)),
	}
	for i := range submissions {
		res.Result = append(res.Result, *submissions[i].ToDTO())
	}
	return c.JSON(http.StatusOK, res)
}

// getSubmission: отправка формы
func (s *Services) getSubmission(c echo.Context) error {
	submission := c.(SubmissionContext).Submission
	return c.JSON(http.StatusOK, submission.ToDTO())
}

// deleteSubmission: удалить отправку
func (s *Services) deleteSubmission(c echo.Context) error {
	submission := c.(SubmissionContext).Submission
	if err := s.db.Transaction(func(tx *gorm.DB) error {
		return dao.DeleteSubmissions(tx, []uuid.UUID{submission.ID})
	}); err != nil {
		return EError(c, err)
	}
	return c.NoContent(http.StatusOK)
}
