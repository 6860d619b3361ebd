package business

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/aisa-it/formdesigner/internal/formdesigner/dao"
	"github.com/aisa-it/formdesigner/internal/formdesigner/forms"
	"github.com/aisa-it/formdesigner/internal/formdesigner/notifications"
	"github.com/aisa-it/formdesigner/internal/formdesigner/templates"
	"github.com/flosch/pongo2/v6"
)

var (
	recipientSeparator = regexp.MustCompile(`\s*[,;]+\s*`)
	contextKeyRegexp   = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
)

// Шаблоны писем пишут операторы, поэтому теги, читающие другие шаблоны или файлы, запрещены.
var (
	messageTemplates   = newMessageTemplateSet()
	messageTemplatesMu sync.Mutex
)

var errTemplateLoad = errors.New("loading templates is not allowed")

type noLoader struct{}

func (noLoader) Abs(base, name string) string { return name }

func (noLoader) Get(path string) (io.Reader, error) { return nil, errTemplateLoad }

func newMessageTemplateSet() *pongo2.TemplateSet {
	set := pongo2.NewSet("messages", noLoader{})
	for _, tag := range []string{"extends", "import", "include", "ssi"} {
		if err := set.BanTag(tag); err != nil {
			panic(err)
		}
	}
	return set
}

// FormData возвращает значения полей, включаемых в результаты, в порядке полей формы.
func FormData(form *forms.Form) []map[string]any {
	cleaned := form.CleanedData()
	data := make([]map[string]any, 0, len(form.Fields))
	for _, f := range form.Fields {
		if !f.Def.IncludeResult {
			continue
		}
		data = append(data, map[string]any{
			"name":  f.Name,
			"label": f.Label,
			"value": forms.ToStorable(cleaned[f.Name]),
		})
	}
	return data
}

// MessageContext - контекст шаблонов письма: значения полей, включаемых в результаты, по именам и список data.
// Поля, чьи имена не годятся как имена переменных шаблона, доступны только через data.
func MessageContext(form *forms.Form) pongo2.Context {
	ctx := pongo2.Context{}
	cleaned := form.CleanedData()
	for _, f := range form.Fields {
		value := cleaned[f.Name]
		if !f.Def.IncludeResult || !contextKeyRegexp.MatchString(f.Name) || value == nil {
			continue
		}
		ctx[f.Name] = value.Raw()
	}
	ctx["data"] = FormData(form)
	return ctx
}

// StringTemplateReplace подставляет контекст в шаблон в синтаксисе Django.
// Если шаблон не разбирается или не выполняется, возвращается исходный текст.
func StringTemplateReplace(text string, ctx pongo2.Context) string {
	if !strings.Contains(text, "{{") && !strings.Contains(text, "{%") {
		return text
	}
	messageTemplatesMu.Lock()
	tpl, err := messageTemplates.FromString("{% autoescape off %}" + text + "{% endautoescape %}")
	messageTemplatesMu.Unlock()
	if err != nil {
		slog.Debug("Message template syntax error, use raw text", "template", text, "err", err)
		return text
	}
	res, err := tpl.Execute(ctx)
	if err != nil {
		slog.Debug("Message template execution error, use raw text", "template", text, "err", err)
		return text
	}
	return res
}

// CompileMessage формирует текст письма: шаблон из описания формы или шаблон по умолчанию.
func (p *Processor) CompileMessage(def *dao.FormDefinition, ctx pongo2.Context) string {
	text := def.MessageTemplate
	if strings.TrimSpace(text) == "" {
		text, _ = templates.Get(p.db, templates.DataMessageTemplate)
	}
	return StringTemplateReplace(text, ctx)
}

// Recipients разбирает mail_to: адреса разделяются запятыми или точками с запятой,
// каждый адрес может быть шаблоном. Пустые адреса отбрасываются.
func Recipients(mailTo string, ctx pongo2.Context) []string {
	var res []string
	for _, part := range recipientSeparator.Split(strings.TrimSpace(mailTo), -1) {
		if part == "" {
			continue
		}
		for _, addr := range recipientSeparator.Split(StringTemplateReplace(part, ctx), -1) {
			if addr = strings.TrimSpace(addr); addr != "" {
				res = append(res, addr)
			}
		}
	}
	return res
}

// BuildMail собирает письмо с результатами. Если получателей нет, возвращается false.
func (p *Processor) BuildMail(def *dao.FormDefinition, form *forms.Form) (notifications.Message, bool) {
	ctx := MessageContext(form)
	to := Recipients(def.MailTo, ctx)
	if len(to) == 0 {
		return notifications.Message{}, false
	}

	subject := def.MailSubject
	if subject == "" {
		subject = def.DisplayTitle()
	}
	return notifications.Message{
		From:    strings.TrimSpace(StringTemplateReplace(def.MailFrom, ctx)),
		To:      to,
		Subject: strings.Join(strings.Fields(StringTemplateReplace(subject, ctx)), " "),
		Body:    p.CompileMessage(def, ctx),
	}, true
}

// SendMail отправляет письмо с результатами, если у формы есть получатели.
func (p *Processor) SendMail(ctx context.Context, def *dao.FormDefinition, form *forms.Form) error {
	if p.mailer == nil {
		return nil
	}
	msg, ok := p.BuildMail(def, form)
	if !ok {
		return nil
	}
	return p.mailer.Send(ctx, msg)
}
