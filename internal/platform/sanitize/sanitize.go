// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package sanitize cleans user and AI supplied text before it is stored.

Two policies are applied:

  - Body: summary bodies keep light formatting (paragraphs, emphasis, lists,
    headings, quotes and absolute links); scripts, styles, frames and every
    on* attribute are removed.
  - Plain: titles and insight text keep no markup at all.

Policies are built once and are safe for concurrent use.
*/
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer holds the compiled bluemonday policies.
type Sanitizer struct {
	body  *bluemonday.Policy
	plain *bluemonday.Policy
}

// New builds a Sanitizer.
func New() *Sanitizer {
	body := bluemonday.NewPolicy()
	body.AllowElements(
		"p", "br", "ul", "ol", "li",
		"blockquote", "strong", "em", "b", "i",
		"h2", "h3", "h4",
	)
	body.AllowAttrs("href").OnElements("a")
	body.AllowStandardURLs()
	body.AllowRelativeURLs(false)
	body.RequireNoReferrerOnLinks(true)
	body.AddTargetBlankToFullyQualifiedLinks(true)

	return &Sanitizer{
		body:  body,
		plain: bluemonday.StrictPolicy(),
	}
}

// Body sanitises a summary body, trimming surrounding whitespace.
func (sanitizer *Sanitizer) Body(raw string) string {
	return strings.TrimSpace(sanitizer.body.Sanitize(raw))
}

// Plain strips every tag. Entities escaped by the policy are decoded again
// because the result is stored as text, not HTML.
func (sanitizer *Sanitizer) Plain(raw string) string {
	return strings.TrimSpace(html.UnescapeString(sanitizer.plain.Sanitize(raw)))
}
