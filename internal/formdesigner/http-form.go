// Публичные страницы форм и JSON API для встраивания форм в другие страницы.
//
// Основные возможности:
//   - Показ формы, прием отправки и повторный показ с ошибками на странице /forms/:name/.
//   - Тот же цикл обработки с ответом в JSON на /api/forms/:name/.
//   - Перенаправление после успешной отправки, если оно включено в описании формы.
package formdesigner

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/aisa-it/formdesigner/internal/formdesigner/apierrors"
	"github.com/aisa-it/formdesigner/internal/formdesigner/business"
	"github.com/aisa-it/formdesigner/internal/formdesigner/dao"
	"github.com/labstack/echo/v4"
)

// HeaderEmbedded - заголовок запроса, которым встраивающая страница сообщает, что перенаправлять не нужно.
const HeaderEmbedded = "X-Form-Embedded"

var errorPage = template.Must(template.New("error").Parse(
	`<!DOCTYPE html><html><head><meta charset="utf-8"><title>{{.}}</title></head><body><h1>{{.}}</h1></body></html>`))

type FormDefinitionContext struct {
	echo.Context
	Definition *dao.FormDefinition
}

func (s *Services) FormDefinitionMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		def, err := dao.GetFormDefinition(s.db.WithContext(c.Request().Context()), c.Param("name"))
		if err != nil {
			return s.formError(c, err)
		}
		return next(FormDefinitionContext{c, def})
	}
}

func (s *Services) AddFormServices(e *echo.Echo) {
	pageGroup := e.Group("/forms/:name", s.FormDefinitionMiddleware)
	pageGroup.GET("/", s.formPage)
	pageGroup.POST("/", s.formPage)

	apiGroup := e.Group("/api/forms/:name", s.FormDefinitionMiddleware)
	apiGroup.GET("/", s.formAPI)
	apiGroup.POST("/", s.formAPI)
}

// isHTMLPage - запрос к HTML-странице формы, а не к JSON API.
func isHTMLPage(c echo.Context) bool {
	return c.Path() == "/forms/:name/"
}

// formError отвечает ошибкой в формате, который ждет клиент: HTML-страницей или JSON.
func (s *Services) formError(c echo.Context, err error) error {
	defined := DefineError(c, err)
	if !isHTMLPage(c) {
		return EErrorDefined(c, defined)
	}

	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(defined.StatusCode)
	return errorPage.Execute(c.Response(), defined.Err)
}

func processRequest(c echo.Context) (business.Request, error) {
	req := business.Request{
		Method:   c.Request().Method,
		Query:    c.QueryParams(),
		Embedded: c.Request().Header.Get(HeaderEmbedded) != "",
	}
	if c.Request().Method == http.MethodPost {
		if _, err := c.FormParams(); err != nil {
			return req, apierrors.ErrBadRequest
		}
		// FormParams смешивает тело с параметрами адреса, значения формы берутся только из тела
		req.Data = c.Request().PostForm
	}
	return req, nil
}

func (s *Services) process(c echo.Context) (*business.Result, error) {
	def := c.(FormDefinitionContext).Definition
	req, err := processRequest(c)
	if err != nil {
		return nil, err
	}
	return s.processor.Process(c.Request().Context(), def, req)
}

// formPage: страница формы
func (s *Services) formPage(c echo.Context) error {
	res, err := s.process(c)
	if err != nil {
		return s.formError(c, err)
	}
	if res.RedirectURL != "" {
		return c.Redirect(http.StatusFound, res.RedirectURL)
	}

	page, err := s.renderer.Render(res)
	if err != nil {
		slog.Error("Render form page", "form", res.Definition.Name, "err", err)
		return s.formError(c, apierrors.ErrFormTemplateFailed.WithFormattedMessage(res.Definition.Name))
	}
	return c.HTMLBlob(http.StatusOK, page)
}

// formAPI: обработка формы (JSON)
func (s *Services) formAPI(c echo.Context) error {
	res, err := s.process(c)
	if err != nil {
		return s.formError(c, err)
	}
	return c.JSON(http.StatusOK, res.ToDTO())
}
