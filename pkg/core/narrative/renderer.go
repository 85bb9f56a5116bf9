package narrative

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

// Renderer converts markdown commentary into HTML safe to inject into the
// dashboard.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer creates a renderer. Raw HTML passes through goldmark and is
// cleaned by the sanitizer instead of being dropped wholesale.
func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithRendererOptions(goldmarkhtml.WithUnsafe()),
		),
	}
}

// Render converts markdown to sanitized HTML.
func (r *Renderer) Render(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("markdown conversion failed: %w", err)
	}
	return sanitizeHTML(buf.String())
}

// sanitizeHTML strips active content from model-influenced HTML: script and
// embed elements, event-handler attributes, and javascript: links.
func sanitizeHTML(htmlContent string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, iframe, object, embed, form").Remove()

	doc.Find("*").Each(func(i int, sel *goquery.Selection) {
		for _, node := range sel.Nodes {
			kept := node.Attr[:0]
			for _, attr := range node.Attr {
				if strings.HasPrefix(strings.ToLower(attr.Key), "on") {
					continue
				}
				if attr.Key == "href" || attr.Key == "src" {
					if strings.HasPrefix(strings.ToLower(strings.TrimSpace(attr.Val)), "javascript:") {
						continue
					}
				}
				kept = append(kept, attr)
			}
			node.Attr = kept
		}
	})

	out, err := doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("failed to serialize HTML: %w", err)
	}
	return out, nil
}
