package utils

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

var md = goldmark.New(goldmark.WithExtensions(extension.Table, extension.Strikethrough))

// CleanMarkdown strips outer markdown code blocks (```markdown ... ```) from LLM output.
func CleanMarkdown(input string) string {
	cleaned := strings.TrimSpace(input)

	if strings.HasPrefix(cleaned, "```markdown") && strings.HasSuffix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```markdown")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	} else if strings.HasPrefix(cleaned, "```") && strings.HasSuffix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	}

	return cleaned
}

// ValidateMarkdown checks that the string parses as Markdown.
// Goldmark is very permissive, so this only rejects what cannot produce a document.
func ValidateMarkdown(input string) bool {
	reader := text.NewReader([]byte(input))
	doc := md.Parser().Parse(reader)
	return doc != nil
}

// RenderMarkdown converts Markdown (GFM tables and strikethrough enabled) to HTML.
// Raw HTML in the source is omitted by goldmark's default renderer.
func RenderMarkdown(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.String(), nil
}

// PlainText extracts whitespace-normalized text from an HTML fragment.
func PlainText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}
	return strings.Join(strings.Fields(doc.Text()), " "), nil
}

// Excerpt renders Markdown and returns at most maxRunes runes of its text, with "…" when cut.
func Excerpt(markdown string, maxRunes int) string {
	html, err := RenderMarkdown(markdown)
	if err != nil {
		return ""
	}
	plain, err := PlainText(html)
	if err != nil {
		return ""
	}
	runes := []rune(plain)
	if maxRunes <= 0 || len(runes) <= maxRunes {
		return plain
	}
	return strings.TrimSpace(string(runes[:maxRunes])) + "…"
}
