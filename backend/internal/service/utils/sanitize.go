package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Policies are safe for concurrent use once built.
var (
	titlePolicy   = bluemonday.StrictPolicy()
	contentPolicy = bluemonday.UGCPolicy()
)

// SanitizeTitle strips all markup from a post title.
func SanitizeTitle(title string) string {
	return sanitize(titlePolicy, title)
}

// SanitizeContent keeps user-generated formatting (links, emphasis, lists)
// and drops scripts, event handlers and other active content.
func SanitizeContent(content string) string {
	return sanitize(contentPolicy, content)
}

// sanitize returns text unescaped, as JSON clients expect it. The escaped
// policy output is kept when unescaping would reveal markup the policy
// removes, e.g. "&lt;script&gt;".
func sanitize(p *bluemonday.Policy, s string) string {
	clean := p.Sanitize(s)
	plain := html.UnescapeString(clean)
	if p.Sanitize(plain) == clean {
		clean = plain
	}
	return strings.TrimSpace(clean)
}
