package html

import (
	"html"
	"net/http"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"

	"github.com/custodia-labs/mcpland/internal/logger"
)

// sniffLen is the number of leading bytes inspected by IsHTML.
const sniffLen = 512

// noiseSelector matches elements whose text is never useful context.
const noiseSelector = "head, script, style, noscript, svg, iframe, nav, footer"

// Pre-compiled regular expressions for the fallback stripper.
var (
	scriptTag     = regexp.MustCompile(`(?is)<(script|style|noscript|head|svg)[^>]*>.*?</(script|style|noscript|head|svg)>`)
	htmlComments  = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockElements = regexp.MustCompile(`(?i)</?(p|div|br|hr|h[1-6]|li|tr|blockquote|pre|table|section|article)[^>]*>`)
	allTags       = regexp.MustCompile(`<[^>]+>`)
	multiSpaces   = regexp.MustCompile(`[ \t\x{00A0}]+`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)
)

// IsHTML reports whether text looks like an HTML document. Plain text and
// markdown context are left alone.
func IsHTML(text string) bool {
	head := text
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	return strings.HasPrefix(http.DetectContentType([]byte(head)), "text/html")
}

// Document is a parsed HTML page.
type Document struct {
	doc *goquery.Document
	raw string
}

// Parse parses content. Malformed markup is tolerated.
func Parse(content string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, err
	}
	return &Document{doc: doc, raw: content}, nil
}

// Title returns the page title from <title>, then og:title, then the
// first <h1>. Returns "" when none is present.
func (d *Document) Title() string {
	if title := strings.TrimSpace(d.doc.Find("title").First().Text()); title != "" {
		return title
	}
	if og, ok := d.doc.Find("meta[property='og:title']").Attr("content"); ok && strings.TrimSpace(og) != "" {
		return strings.TrimSpace(og)
	}
	return strings.TrimSpace(d.doc.Find("h1").First().Text())
}

// Markdown converts the page body to markdown. baseURL resolves relative
// links.
func (d *Document) Markdown(baseURL string) string {
	d.doc.Find(noiseSelector).Remove()

	body, err := d.doc.Find("body").Html()
	if err != nil || strings.TrimSpace(body) == "" {
		body, err = d.doc.Html()
	}
	if err != nil {
		logger.Warn("Rendering HTML failed, stripping tags instead: %v", err)
		return StripTags(d.raw)
	}

	converted, err := md.NewConverter(baseURL, true, nil).ConvertString(body)
	if err != nil {
		logger.Warn("HTML to markdown conversion failed, stripping tags instead: %v", err)
		return StripTags(d.raw)
	}
	converted = strings.TrimSpace(multiNewlines.ReplaceAllString(converted, "\n\n"))
	if converted == "" {
		return StripTags(d.raw)
	}
	return converted
}

// StripTags removes markup with regular expressions and returns the
// readable text. Block elements become paragraph breaks.
func StripTags(content string) string {
	content = scriptTag.ReplaceAllString(content, "")
	content = htmlComments.ReplaceAllString(content, "")
	content = blockElements.ReplaceAllString(content, "\n\n")
	content = allTags.ReplaceAllString(content, "")
	content = html.UnescapeString(content)
	content = multiSpaces.ReplaceAllString(content, " ")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	content = strings.Join(lines, "\n")
	content = multiNewlines.ReplaceAllString(content, "\n\n")

	return strings.TrimSpace(content)
}
