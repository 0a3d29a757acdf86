// Package markup turns user-entered Markdown into allow-listed HTML.
package markup

import (
	"bytes"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	PostTags = []string{
		"a", "abbr", "acronym", "b", "blockquote", "code", "em", "i",
		"li", "ol", "pre", "strong", "ul", "h1", "h2", "h3", "p",
	}
	CommentTags = []string{"a", "abbr", "acronym", "b", "code", "em", "i", "strong"}
)

type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// NewRenderer returns a renderer whose output keeps only the given elements.
// Raw HTML in the source reaches the sanitizer, so disallowed tags are
// stripped rather than shown.
func NewRenderer(tags ...string) *Renderer {
	policy := bluemonday.NewPolicy()
	policy.AllowElements(tags...)
	policy.AllowAttrs("href", "title").OnElements("a")
	policy.AllowAttrs("title").OnElements("abbr", "acronym")
	policy.AllowStandardURLs()
	policy.RequireNoFollowOnLinks(true)

	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.Linkify),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
		policy: policy,
	}
}

func (r *Renderer) Render(source string) string {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		return strings.TrimSpace(r.policy.Sanitize(source))
	}
	return strings.TrimSpace(r.policy.Sanitize(buf.String()))
}

var (
	posts    = NewRenderer(PostTags...)
	comments = NewRenderer(CommentTags...)
)

func RenderPost(source string) string {
	return posts.Render(source)
}

func RenderComment(source string) string {
	return comments.Render(source)
}
