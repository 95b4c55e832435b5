package fallback

import (
	"regexp"
	"strings"
)

var (
	fencedBlockRe = regexp.MustCompile("```[a-zA-Z]*\n?")
	headingRe     = regexp.MustCompile(`(?m)^#{1,6}\s*`)
	boldRe        = regexp.MustCompile(`\*\*([^*]*)\*\*`)
	emphasisRe    = regexp.MustCompile(`(^|[^\w*])\*([^*]+)\*`)
	underscoreRe  = regexp.MustCompile(`__([^_]*)__`)
	inlineCodeRe  = regexp.MustCompile("`([^`]*)`")
	listMarkerRe  = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
)

// StripMarkdown removes emphasis markers, headings, code fences and list
// bullets so callers receive plain prose regardless of which path
// produced the text.
func StripMarkdown(text string) string {
	if text == "" {
		return ""
	}
	out := fencedBlockRe.ReplaceAllString(text, "")
	out = headingRe.ReplaceAllString(out, "")
	out = boldRe.ReplaceAllString(out, "$1")
	out = underscoreRe.ReplaceAllString(out, "$1")
	out = emphasisRe.ReplaceAllString(out, "$1$2")
	out = inlineCodeRe.ReplaceAllString(out, "$1")
	out = listMarkerRe.ReplaceAllString(out, "")
	return strings.TrimSpace(out)
}
