// Генерация документации об ошибках API конструктора форм в формате Markdown.
// Читает файл с определениями DefinedError и строит по таблице на каждую группу кодов.
//
// Основные возможности:
//   - Разбор определений ошибок через go/ast без компиляции пакета.
//   - Группы берутся из комментариев вида "// 2*** - form definition errors".
//   - HTTP-код выводится числом вместе с именем константы net/http.
package main

import (
	"flag"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"

	md "github.com/nao1215/markdown"
)

var statusCodes = map[string]int{
	"StatusBadRequest":            http.StatusBadRequest,
	"StatusUnauthorized":          http.StatusUnauthorized,
	"StatusForbidden":             http.StatusForbidden,
	"StatusNotFound":              http.StatusNotFound,
	"StatusConflict":              http.StatusConflict,
	"StatusRequestEntityTooLarge": http.StatusRequestEntityTooLarge,
	"StatusUnprocessableEntity":   http.StatusUnprocessableEntity,
	"StatusInternalServerError":   http.StatusInternalServerError,
	"StatusBadGateway":            http.StatusBadGateway,
	"StatusServiceUnavailable":    http.StatusServiceUnavailable,
}

type errorGroup struct {
	title string
	rows  [][]string
}

func main() {
	errorsFile := flag.String("src", "internal/formdesigner/apierrors/apierrors.go", "Path of apierrors.go")
	outputMd := flag.String("out", "api_errors.md", "Path to output md")
	flag.Parse()

	slog.Info("Generate api errors docs", "src", *errorsFile, "out", *outputMd)

	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, *errorsFile, nil, parser.ParseComments)
	if err != nil {
		slog.Error("Parse errors file", "err", err)
		os.Exit(1)
	}

	out, err := os.Create(*outputMd)
	if err != nil {
		slog.Error("Create output file", "err", err)
		os.Exit(1)
	}
	defer out.Close()

	doc := md.NewMarkdown(out).
		H1("Перечень кодов ошибок").
		PlainText("Ошибки API возвращаются в теле ответа в виде `{\"code\": ..., \"error\": ..., \"ru_error\": ...}`.")
	for _, g := range getGroups(f) {
		doc = doc.H2(g.title).CustomTable(md.TableSet{
			Header: []string{"Код", "HTTP код", "Сообщение", "Сообщение на русском"},
			Rows:   g.rows,
		}, md.TableOptions{AutoWrapText: false})
	}
	if err := doc.Build(); err != nil {
		slog.Error("Generate docs fail", "err", err)
		os.Exit(1)
	}
	slog.Info("Docs generated")
}

// getGroups собирает строки таблиц из объявлений var, разбивая их на группы по комментариям.
func getGroups(f *ast.File) []errorGroup {
	var groups []errorGroup
	for _, d := range f.Decls {
		decl, ok := d.(*ast.GenDecl)
		if !ok || decl.Tok != token.VAR {
			continue
		}
		for _, s := range decl.Specs {
			spec, ok := s.(*ast.ValueSpec)
			if !ok {
				continue
			}
			if spec.Doc != nil || len(groups) == 0 {
				groups = append(groups, errorGroup{title: groupTitle(spec.Doc)})
			}
			for _, v := range spec.Values {
				lit, ok := v.(*ast.CompositeLit)
				if !ok {
					continue
				}
				g := &groups[len(groups)-1]
				g.rows = append(g.rows, getRow(lit))
			}
		}
	}

	res := groups[:0]
	for _, g := range groups {
		if len(g.rows) > 0 {
			res = append(res, g)
		}
	}
	return res
}

func groupTitle(doc *ast.CommentGroup) string {
	if doc == nil {
		return "Ошибки"
	}
	title := strings.TrimSpace(doc.Text())
	if _, after, ok := strings.Cut(title, " - "); ok {
		title = after
	}
	if title == "" {
		return "Ошибки"
	}
	return strings.ToUpper(title[:1]) + title[1:]
}

func getRow(lit *ast.CompositeLit) []string {
	row := make([]string, 4)
	statusName := "StatusBadRequest"
	for _, elt := range lit.Elts {
		param, ok := elt.(*ast.KeyValueExpr)
		if !ok {
			continue
		}
		switch fmt.Sprint(param.Key) {
		case "Code":
			if v, ok := param.Value.(*ast.BasicLit); ok {
				row[0] = md.Bold(v.Value)
			}
		case "StatusCode":
			if sel, ok := param.Value.(*ast.SelectorExpr); ok {
				statusName = sel.Sel.Name
			}
		case "Err":
			row[2] = md.Code(stringValue(param.Value))
		case "RuErr":
			row[3] = md.Code(stringValue(param.Value))
		}
	}
	row[1] = fmt.Sprintf("%d %s", statusCodes[statusName], md.Italic(statusName))
	return row
}

// stringValue возвращает значение строкового литерала или конкатенации литералов.
func stringValue(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.BasicLit:
		if s, err := strconv.Unquote(e.Value); err == nil {
			return s
		}
		return e.Value
	case *ast.BinaryExpr:
		return stringValue(e.X) + stringValue(e.Y)
	}
	return ""
}
