package snippet

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"
	"text/template"
)

// Style names a snippet syntax.
type Style string

// Snippet styles, one per backend.
const (
	StyleGo     Style = "go"
	StyleScript Style = "script"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//nolint:gochecknoglobals // parsed once at package initialization
var templates = mustLoad()

func funcMap() template.FuncMap {
	return template.FuncMap{
		// goString quotes s as a Go string literal, preferring a raw string.
		"goString": func(s string) string {
			if strings.Contains(s, "`") {
				return strconv.Quote(s)
			}
			return "`" + s + "`"
		},
		// yamlString quotes s as a single-quoted YAML scalar.
		"yamlString": func(s string) string {
			return "'" + strings.ReplaceAll(s, "'", "''") + "'"
		},
	}
}

func mustLoad() map[Style]*template.Template {
	loaded, err := load()
	if err != nil {
		// Templates are embedded, so a failure here is a build defect.
		panic(fmt.Sprintf("failed to load embedded snippet templates: %v", err))
	}
	return loaded
}

func load() (map[Style]*template.Template, error) {
	out := make(map[Style]*template.Template)
	err := fs.WalkDir(templateFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".tmpl") {
			return nil
		}

		content, err := templateFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading template %s: %w", path, err)
		}

		// templates/go.tmpl -> go
		style := Style(strings.TrimSuffix(strings.TrimPrefix(path, "templates/"), ".tmpl"))
		tmpl, err := template.New(string(style)).Funcs(funcMap()).Parse(string(content))
		if err != nil {
			return fmt.Errorf("parsing template %s: %w", path, err)
		}
		out[style] = tmpl
		return nil
	})
	return out, err
}

// Styles returns the available styles in sorted order.
func Styles() []Style {
	styles := make([]Style, 0, len(templates))
	for s := range templates {
		styles = append(styles, s)
	}
	sort.Slice(styles, func(i, j int) bool { return styles[i] < styles[j] })
	return styles
}

// Render formats sk in the given style.
func Render(style Style, sk Skeleton) (string, error) {
	tmpl, ok := templates[style]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStyle, style)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, sk); err != nil {
		return "", fmt.Errorf("rendering %s snippet: %w", style, err)
	}
	return buf.String(), nil
}

// For analyzes text and renders it in style. An unknown style yields "".
func For(style Style, text string) string {
	out, err := Render(style, Analyze(text))
	if err != nil {
		return ""
	}
	return out
}
