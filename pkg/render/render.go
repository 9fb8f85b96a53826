package render

import (
	"regexp"
	"strings"

	"github.com/russross/blackfriday"
)

const (
	htmlFlags = blackfriday.HTML_SKIP_HTML |
		blackfriday.HTML_SKIP_IMAGES |
		blackfriday.HTML_SKIP_STYLE

	extensions = blackfriday.EXTENSION_NO_INTRA_EMPHASIS |
		blackfriday.EXTENSION_STRIKETHROUGH
)

var (
	paragraphOpen  = regexp.MustCompile(`<p>`)
	paragraphClose = regexp.MustCompile(`</p>\n*`)
	lineBreak      = regexp.MustCompile(`<br\s*/?>`)
	tooManyBreaks  = regexp.MustCompile(`\n{3,}`)
)

// ToHTML converts markdown into the HTML subset Telegram accepts
// (b/strong, i/em, s/del, code, pre, a). Paragraph tags become blank lines.
func ToHTML(markdown string) string {
	renderer := blackfriday.HtmlRenderer(htmlFlags, "", "")
	out := string(blackfriday.Markdown([]byte(markdown), renderer, extensions))

	out = paragraphOpen.ReplaceAllString(out, "")
	out = paragraphClose.ReplaceAllString(out, "\n\n")
	out = lineBreak.ReplaceAllString(out, "\n")
	out = tooManyBreaks.ReplaceAllString(out, "\n\n")

	return strings.TrimSpace(out)
}
