package outreach

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PreviewLength is how much of a step body the preview column keeps.
const PreviewLength = 200

var (
	htmlTagHint = regexp.MustCompile(`<[a-zA-Z/!]`)
	whitespace  = regexp.MustCompile(`\s+`)
)

// BodyPreview produces the stored preview of a step body: HTML reduced to
// its text content, whitespace collapsed, truncated to max runes. Plain
// text passes through untouched apart from collapsing and truncation.
func BodyPreview(body string, max int) string {
	text := body
	if htmlTagHint.MatchString(body) {
		// Pad tags so adjacent block elements don't fuse into one word
		// when the markup is dropped.
		spaced := strings.ReplaceAll(body, "<", " <")
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(spaced)); err == nil {
			text = doc.Text()
		}
	}
	text = strings.TrimSpace(whitespace.ReplaceAllString(text, " "))

	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}
