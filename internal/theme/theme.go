// Package theme resolves syntax highlighting themes and generates their CSS
// for the comment preview.
package theme

import (
	"html/template"
	"net/http"
	"slices"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/debemdeboas/archive-comments/internal/cache"
	"github.com/debemdeboas/archive-comments/internal/config"
)

// QuerySyntaxTheme selects the preview theme on a request.
const QuerySyntaxTheme = "syntax_theme"

func GetSyntaxThemes() []string {
	styleNames := styles.Names()
	slices.Sort(styleNames)
	return styleNames
}

// Resolve returns name when chroma knows it, else the configured theme, else
// the built-in default.
func Resolve(name string) string {
	if name != "" && slices.Contains(styles.Names(), name) {
		return name
	}
	if config.AppConfig != nil && config.AppConfig.Theme.SyntaxTheme != "" {
		return config.AppConfig.Theme.SyntaxTheme
	}
	return config.DefaultSyntaxTheme
}

// FromRequest reads the syntax theme from the query string.
func FromRequest(r *http.Request) string {
	return Resolve(r.URL.Query().Get(QuerySyntaxTheme))
}

func GetFormatter() *html.Formatter {
	return html.New(
		html.WithClasses(true),
		html.TabWidth(4),
		html.WithLineNumbers(false),
		html.WrapLongLines(true),
	)
}

func GenerateSyntaxCSS(theme string) template.CSS {
	if css, ok := cache.GetSyntaxCSS(theme); ok {
		return css
	}

	var buf strings.Builder
	style := styles.Get(theme)

	bg := style.Get(chroma.Background)
	if !bg.Colour.IsSet() {
		// Pick a readable text colour when the style only sets a background.
		luminance := (0.299*float64(bg.Background.Red()) +
			0.587*float64(bg.Background.Green()) +
			0.114*float64(bg.Background.Blue())) / 255
		if luminance > 0.5 {
			buf.WriteString(".chroma { color: #181818; }\n")
		}
	}

	if err := GetFormatter().WriteCSS(&buf, style); err != nil {
		return ""
	}
	css := template.CSS(buf.String())
	cache.SetSyntaxCSS(theme, css)
	return css
}
