package normalize

import (
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// htmlTagPattern detects the markup publishers put into book descriptions.
var htmlTagPattern = regexp.MustCompile(`<(p|br|div|span|b|i|strong|em|a|ul|ol|li|h[1-6]|blockquote)[\s>/]`)

func containsHTML(s string) bool {
	return htmlTagPattern.MatchString(strings.ToLower(s))
}

// Markdown converts an HTML description to Markdown. Plain text and
// unconvertible input are returned trimmed but otherwise unchanged.
func Markdown(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || !containsHTML(s) {
		return s
	}

	markdown, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return s
	}
	return strings.TrimSpace(markdown)
}

// Summary renders a description as Markdown and cuts it to n characters.
func Summary(description string, n int) string {
	return Truncate(Markdown(description), n)
}
