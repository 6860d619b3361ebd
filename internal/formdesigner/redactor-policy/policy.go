// Политики очистки текста, который оператор вводит при описании форм.
//
// Основные возможности:
//   - StripTagsPolicy удаляет всю разметку (подписи, заголовки, подсказки, сообщения).
//   - UgcPolicy оставляет безопасный HTML для описания формы.
package policy

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var StripTagsPolicy *bluemonday.Policy = bluemonday.StrictPolicy()
var UgcPolicy *bluemonday.Policy = bluemonday.UGCPolicy()

func init() {
	UgcPolicy.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("p", "span", "div")
	UgcPolicy.RequireNoFollowOnLinks(true)
	UgcPolicy.AddTargetBlankToFullyQualifiedLinks(true)
}

// PlainText удаляет теги и возвращает текст без html-сущностей.
func PlainText(s string) string {
	if s == "" {
		return s
	}
	return strings.TrimSpace(html.UnescapeString(StripTagsPolicy.Sanitize(s)))
}

// SafeHTML очищает пользовательский HTML.
func SafeHTML(s string) string {
	if s == "" {
		return s
	}
	return strings.TrimSpace(UgcPolicy.Sanitize(s))
}
