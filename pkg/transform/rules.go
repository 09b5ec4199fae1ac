package transform

import (
	"fmt"
	"regexp"
	"strings"
)

// tistoryStyleMarker identifies content already converted for Tistory.
const tistoryStyleMarker = `data-blogpub="styled"`

// naverWrapOpen and naverWrapClose delimit the raw-HTML section Naver's
// smart editor preserves verbatim.
const (
	naverWrapOpen  = "<!-- blogpub:raw-html -->"
	naverWrapClose = "<!-- /blogpub:raw-html -->"
)

var (
	headingOneRe = regexp.MustCompile(`(?i)<(/?)h[12]([^>]*)>`)
	paragraphRe  = regexp.MustCompile(`(?i)<p(\s[^>]*)?>`)

	htmlTagRe     = regexp.MustCompile(`(?i)</?(p|h[1-6]|strong|b|em|i|a|img|ul|ol|li|blockquote|pre|code|div|span|br)\b[^>]*>`)
	mdHeadingRe   = regexp.MustCompile(`(?im)^<h([1-6])[^>]*>(.*?)</h[1-6]>$`)
	mdAnchorRe    = regexp.MustCompile(`(?is)<a\s[^>]*href="([^"]*)"[^>]*>(.*?)</a>`)
	mdImageRe     = regexp.MustCompile(`(?i)<img\s[^>]*src="([^"]*)"[^>]*/?>`)
	mdStrongRe    = regexp.MustCompile(`(?is)<(?:strong|b)>(.*?)</(?:strong|b)>`)
	mdEmphasisRe  = regexp.MustCompile(`(?is)<(?:em|i)>(.*?)</(?:em|i)>`)
	mdParagraphRe = regexp.MustCompile(`(?is)<p[^>]*>(.*?)</p>`)
	mdBreakRe     = regexp.MustCompile(`(?i)<br\s*/?>`)
	inlineHead    = regexp.MustCompile(`(?is)<h[1-6][^>]*>(.*?)</h[1-6]>`)
)

// Tistory remaps top-level headings to h3 and injects the inline paragraph
// style Tistory's editor strips from pasted content. Content carrying the
// style marker is returned unchanged.
func Tistory(content string, _ Meta) string {
	if strings.Contains(content, tistoryStyleMarker) {
		return content
	}

	out := headingOneRe.ReplaceAllString(content, `<${1}h3$2>`)
	out = paragraphRe.ReplaceAllString(out,
		fmt.Sprintf(`<p %s style="line-height:1.8;margin:0 0 16px">`, tistoryStyleMarker))
	return out
}

// Naver wraps the HTML body in the raw-HTML comment block the smart editor
// wants, leaving already wrapped content alone.
func Naver(content string, _ Meta) string {
	if strings.Contains(content, naverWrapOpen) {
		return content
	}
	return naverWrapOpen + "\n" + content + "\n" + naverWrapClose
}

// Medium converts HTML into the markdown blocks Medium's import accepts.
// Content with no recognized HTML tags is treated as native markdown and
// returned unchanged.
func Medium(content string, _ Meta) string {
	if !htmlTagRe.MatchString(content) {
		return content
	}

	out := content
	out = mdHeadingRe.ReplaceAllStringFunc(out, func(match string) string {
		groups := mdHeadingRe.FindStringSubmatch(match)
		level := int(groups[1][0] - '0')
		return strings.Repeat("#", level) + " " + strings.TrimSpace(groups[2])
	})
	// Headings not on their own line still need converting, at h2.
	out = inlineHead.ReplaceAllString(out, "\n## $1\n")
	out = mdImageRe.ReplaceAllString(out, "![]($1)")
	out = mdAnchorRe.ReplaceAllString(out, "[$2]($1)")
	out = mdStrongRe.ReplaceAllString(out, "**$1**")
	out = mdEmphasisRe.ReplaceAllString(out, "*$1*")
	out = mdParagraphRe.ReplaceAllString(out, "$1\n\n")
	out = mdBreakRe.ReplaceAllString(out, "\n")
	out = htmlTagRe.ReplaceAllString(out, "")
	return strings.TrimSpace(out)
}
