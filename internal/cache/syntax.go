package cache

import "html/template"

// syntaxCache holds the chroma stylesheet per resolved theme name. Preview
// HTML and the comment server's /syntax-theme endpoint both read it, and
// stylesheets never change while the process runs, so entries have no TTL.
var syntaxCache = NewCache[string, template.CSS]()

// GetSyntaxCSS returns the stylesheet generated earlier for theme.
func GetSyntaxCSS(theme string) (template.CSS, bool) {
	return syntaxCache.Get(theme)
}

// SetSyntaxCSS stores the stylesheet for theme.
func SetSyntaxCSS(theme string, css template.CSS) {
	syntaxCache.Set(theme, css)
}
