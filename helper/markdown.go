package helper

import (
	"gitlab.com/golang-commonmark/markdown"
)

// Raw HTML in article bodies is not passed through.
var md = markdown.New(markdown.HTML(false), markdown.Linkify(true), markdown.Typographer(false))

// RenderMarkdown renders an article body to HTML.
func RenderMarkdown(body string) string {
	return md.RenderToString([]byte(body))
}
