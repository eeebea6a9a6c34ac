// Package markdown renders the rich text fields of landing page sections.
package markdown

import (
	"bytes"
	"fmt"
	"html/template"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
)

var markdownEngine = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Table,
		extension.Strikethrough,
		extension.TaskList,
		extension.Linkify,
		extension.Typographer,
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithHardWraps(),
		htmlrenderer.WithXHTML(),
		htmlrenderer.WithUnsafe(),
	),
)

var (
	spoilerPattern   = regexp.MustCompile(`\|\|([\s\S]+?)\|\|`)
	mentionPattern   = regexp.MustCompile(`\b(GH|TW|TG)@([A-Za-z0-9_]+)\b`)
	paragraphWrapper = regexp.MustCompile(`(?s)^<p>(.*)</p>\s*$`)
)

var mentionBase = map[string]string{
	"GH": "https://github.com/",
	"TW": "https://twitter.com/",
	"TG": "https://t.me/",
}

var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^[a-zA-Z0-9 _-]+$`)).OnElements("span", "a", "code", "pre")
	p.AllowAttrs("target").Matching(regexp.MustCompile(`^_blank$`)).OnElements("a")
	p.RequireNoReferrerOnLinks(true)
	return p
}

// Render converts markdown into sanitized HTML. Raw HTML passes through
// goldmark and is filtered by the policy afterwards.
func Render(text string) template.HTML {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	text = replaceMention(text)
	text = replaceSpoiler(text)

	var out bytes.Buffer
	if err := markdownEngine.Convert([]byte(text), &out); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(policy.Sanitize(out.String())) //nolint:gosec
}

// RenderInline renders a single line of markdown without the surrounding
// paragraph, for headings and button labels.
func RenderInline(text string) template.HTML {
	html := string(Render(text))
	if m := paragraphWrapper.FindStringSubmatch(html); m != nil && !strings.Contains(m[1], "<p>") {
		return template.HTML(m[1]) //nolint:gosec
	}
	return template.HTML(html) //nolint:gosec
}

// Sanitize strips anything outside the user content policy from raw HTML.
func Sanitize(html string) template.HTML {
	return template.HTML(policy.Sanitize(html)) //nolint:gosec
}

func replaceSpoiler(text string) string {
	return spoilerPattern.ReplaceAllStringFunc(text, func(raw string) string {
		match := spoilerPattern.FindStringSubmatch(raw)
		if len(match) < 2 {
			return raw
		}
		content := template.HTMLEscapeString(strings.TrimSpace(match[1]))
		return `<span class="spoiler">` + content + `</span>`
	})
}

func replaceMention(text string) string {
	return mentionPattern.ReplaceAllStringFunc(text, func(raw string) string {
		match := mentionPattern.FindStringSubmatch(raw)
		if len(match) < 3 {
			return raw
		}
		base := mentionBase[match[1]]
		if base == "" {
			return raw
		}
		name := template.HTMLEscapeString(match[2])
		return fmt.Sprintf(`<a target="_blank" class="mention" href="%s%s">%s</a>`, base, name, name)
	})
}
