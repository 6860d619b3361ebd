// Шаблоны страниц и писем конструктора форм. Шаблоны хранятся в таблице templates под именем-путем,
// встроенные версии добавляются при старте, если их еще нет, и служат запасным вариантом.
package templates

import (
	"embed"
	"io/fs"
	"log/slog"
	"path"
	"strings"

	"github.com/aisa-it/formdesigner/internal/formdesigner/dao"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"
	"gorm.io/gorm"
)

const (
	DetailTemplate      = "formdefinition/detail.html"
	DataMessageTemplate = "formdefinition/data_message.txt"
)

//go:embed defaults
var defaultTemplates embed.FS

var minifier = newMinifier()

func newMinifier() *minify.M {
	m := minify.New()
	m.Add("text/html", &html.Minifier{
		KeepDocumentTags: true,
		KeepEndTags:      true,
		KeepQuotes:       true,
	})
	return m
}

// Names возвращает имена всех встроенных шаблонов.
func Names() []string {
	var names []string
	fs.WalkDir(defaultTemplates, "defaults", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		names = append(names, strings.TrimPrefix(p, "defaults/"))
		return nil
	})
	return names
}

// Default возвращает встроенную версию шаблона.
func Default(name string) (string, bool) {
	data, err := defaultTemplates.ReadFile(path.Join("defaults", name))
	if err != nil {
		return "", false
	}
	return string(data), true
}

// Get возвращает шаблон из базы, а если его там нет, встроенную версию.
func Get(db *gorm.DB, name string) (string, bool) {
	temp, err := dao.GetTemplate(db, name)
	if err == nil {
		return temp.Template, true
	}
	if err != gorm.ErrRecordNotFound {
		slog.Warn("Get template from db", "name", name, "err", err)
	}
	return Default(name)
}

// Seed добавляет в базу встроенные шаблоны, которых там еще нет. HTML при этом минифицируется.
func Seed(tx *gorm.DB) error {
	for _, name := range Names() {
		var exist bool
		if err := tx.Select("count(*) > 0").
			Table("templates").
			Where("name = ?", name).
			Find(&exist).Error; err != nil {
			return err
		}
		if exist {
			continue
		}

		data, _ := Default(name)
		if path.Ext(name) == ".html" {
			minified, err := minifier.String("text/html", data)
			if err != nil {
				slog.Warn("Minify default template", "name", name, "err", err)
			} else {
				data = minified
			}
		}

		if err := tx.Create(&dao.Template{Name: name, Template: data}).Error; err != nil {
			return err
		}
		slog.Info("Default template added", "name", name)
	}
	return nil
}
