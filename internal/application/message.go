package application

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/ericfisherdev/promowatch/internal/domain/model"
)

var (
	mdRenderer    goldmark.Markdown
	htmlSanitizer *bluemonday.Policy
)

func init() {
	mdRenderer = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)

	htmlSanitizer = bluemonday.UGCPolicy()
}

// ComposeDigest builds the notification subject, plain-text body, and
// HTML body for newly discovered free items. The HTML is rendered from a
// markdown digest and sanitized: titles and descriptions come from the
// upstream catalog and are not trusted.
func ComposeDigest(items []model.FreeItem, now time.Time) (subject, textBody, htmlBody string) {
	noun := "games"
	if len(items) == 1 {
		noun = "game"
	}
	subject = fmt.Sprintf("%d new free %s on the Epic Games Store", len(items), noun)

	var md strings.Builder
	fmt.Fprintf(&md, "## New free games\n\n%d new free %s found:\n\n", len(items), noun)
	for _, item := range items {
		fmt.Fprintf(&md, "### %s\n\n", item.Title)
		if item.Description != "" {
			fmt.Fprintf(&md, "%s\n\n", item.Description)
		}
		if !item.PromotionEnd.IsZero() {
			fmt.Fprintf(&md, "Free until %s.\n\n", item.PromotionEnd.Format("Mon, 02 Jan 2006"))
		}
		fmt.Fprintf(&md, "[Claim now](%s)\n\n", item.URL)
	}
	fmt.Fprintf(&md, "---\n\nSent by promowatch on %s.\n", now.Format("2006-01-02 15:04:05"))

	var text strings.Builder
	fmt.Fprintf(&text, "%d new free %s found:\n\n", len(items), noun)
	for _, item := range items {
		fmt.Fprintf(&text, "- %s\n  %s\n", item.Title, item.URL)
	}

	return subject, text.String(), renderMarkdown(md.String())
}

// renderMarkdown converts markdown to sanitized HTML. When rendering
// fails the raw source is sanitized instead, so hostile input can never
// reach the mail client unescaped.
func renderMarkdown(src string) string {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(src), &buf); err != nil {
		return htmlSanitizer.Sanitize(src)
	}
	return htmlSanitizer.Sanitize(buf.String())
}
