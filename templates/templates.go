// Package templates embeds the HTML pages and email bodies.
package templates

import (
	"embed"
	"html/template"
)

//go:embed *.html email/*.txt email/*.html
var FS embed.FS

// Pages parses every page template with the shared helper functions.
func Pages() *template.Template {
	return template.Must(template.New("").Funcs(template.FuncMap{
		"safe": func(s string) template.HTML { return template.HTML(s) },
		"dict": func(kv ...interface{}) map[string]interface{} {
			m := make(map[string]interface{}, len(kv)/2)
			for i := 0; i+1 < len(kv); i += 2 {
				if k, ok := kv[i].(string); ok {
					m[k] = kv[i+1]
				}
			}
			return m
		},
	}).ParseFS(FS, "*.html"))
}
