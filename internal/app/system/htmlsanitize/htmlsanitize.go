// internal/app/system/htmlsanitize/htmlsanitize.go
package htmlsanitize

import "github.com/microcosm-cc/bluemonday"

// policy is the shared sanitizer for user-generated content: bios, group
// descriptions, and message bodies. Built once; bluemonday policies are
// safe for concurrent use.
var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("colspan", "rowspan").OnElements("td", "th")
	return p
}

// Sanitize strips unsafe HTML from user-supplied text. Plain text passes
// through unchanged; script tags, event handlers, and javascript: URLs
// are removed.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return policy.Sanitize(s)
}
