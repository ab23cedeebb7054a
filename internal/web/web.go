// Package web holds the server-rendered admin pages.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/vietanh2810/election-admin/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"ago": func(t time.Time) string {
		return humanize.Time(t)
	},
	"agoPtr": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return humanize.Time(*t)
	},
	"ordinal": humanize.Ordinal,
	"count": func(n int, singular string) string {
		if n == 1 {
			return "1 " + singular
		}
		return humanize.Comma(int64(n)) + " " + singular + "s"
	},
	"statusLabel": func(s domain.ElectionStatus) string {
		if s == "" {
			return ""
		}
		return strings.ToUpper(string(s[:1])) + string(s[1:])
	},
}

// Templates parses every page. Page templates are named after their file.
func Templates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("template.ParseFS -> %w", err)
	}

	return tmpl, nil
}
