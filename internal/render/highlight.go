package render

import (
	"bytes"
	stdhtml "html"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// HighlightSource colours the raw draft as markdown source, for the preview's
// source tab.
func HighlightSource(source string, theme string) (string, error) {
	lexer := lexers.Get("markdown")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(theme)
	if style == nil {
		style = styles.Fallback
	}

	formatter := html.New(
		html.WithClasses(true),
		html.WithLineNumbers(false),
		html.PreventSurroundingPre(true),
	)

	var buf bytes.Buffer
	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return stdhtml.EscapeString(source), err
	}

	if err := formatter.Format(&buf, style, iterator); err != nil {
		return stdhtml.EscapeString(source), err
	}

	result := `<div class="comment-source">` + buf.String() + `</div>`
	result = strings.ReplaceAll(result, "\n", "<br>\n")

	return result, nil
}
