
package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

type Parser struct{}

func New() *Parser { return &Parser{} }

var whitespaceRe = regexp.MustCompile(`\s+`)

// Title returns the page title, falling back to og:title. Unparseable input
// yields "".
func (p *Parser) Title(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	title := doc.Find("title").First().Text()
	if strings.TrimSpace(title) == "" {
		title = doc.Find(`meta[property="og:title"]`).AttrOr("content", "")
	}
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(title, " "))
}
