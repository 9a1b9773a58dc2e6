// Package sanitize cleans rendered HTML before it leaves the process, for
// templates fed with untrusted document data.
package sanitize

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

// HTML strips scripts, event handlers and other unsafe markup while keeping
// the formatting a user generated content policy allows.
func HTML(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	return sanitizer().Sanitize(raw)
}

func sanitizer() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowAttrs("class").Globally()
		p.AllowElements("section", "article", "header", "footer", "nav", "aside")
		policy = p
	})
	return policy
}
