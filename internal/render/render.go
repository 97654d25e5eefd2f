// Package render turns markdown bodies into sanitized HTML previews.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Placeholders shown instead of a rendered body.
const (
	ErrorPlaceholder = `<pre class="muted">Error rendering preview</pre>`
	EmptyState       = `<p class="muted">No file selected. Create a new note.</p>`
)

// ErrRenderPanic wraps a panic recovered from the markdown renderer.
var ErrRenderPanic = errors.New("renderer panicked")

// Renderer converts markdown to HTML that is safe to display.
type Renderer interface {
	Render(src string) (string, error)
}

// Markdown renders GitHub-flavored markdown with line-break preserving hard
// wraps, then sanitizes the result with a user-generated-content policy.
//
// Raw HTML in the source passes through goldmark and is cleaned by the
// sanitizer, so script elements and event handler attributes never survive.
// Safe for concurrent use.
type Markdown struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

var _ Renderer = (*Markdown)(nil)

// NewMarkdown returns the default renderer.
func NewMarkdown() *Markdown {
	policy := bluemonday.UGCPolicy()
	// GFM task list items.
	policy.AllowAttrs("type").Matching(regexp.MustCompile(`^checkbox$`)).OnElements("input")
	policy.AllowAttrs("checked", "disabled").OnElements("input")

	return &Markdown{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(
				html.WithHardWraps(),
				html.WithUnsafe(),
			),
		),
		policy: policy,
	}
}

// Render converts src. Panics inside the markdown engine are returned as
// errors wrapping [ErrRenderPanic].
func (m *Markdown) Render(src string) (out string, err error) {
	defer func() {
		if p := recover(); p != nil {
			out = ""
			err = fmt.Errorf("%w: %v", ErrRenderPanic, p)
		}
	}()

	var buf bytes.Buffer

	err = m.md.Convert([]byte(src), &buf)
	if err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}

	return string(m.policy.SanitizeBytes(buf.Bytes())), nil
}

// Preview renders src with r, falling back to [ErrorPlaceholder] on failure.
func Preview(r Renderer, src string) string {
	out, err := r.Render(src)
	if err != nil {
		return ErrorPlaceholder
	}

	return out
}
