package services

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

const (
	ExcerptLength = 200
	MaxThumbnails = 4
)

var (
	imgTagPattern = regexp.MustCompile(`(?is)<img\b[^>]*>`)
	imgSrcPattern = regexp.MustCompile(`(?is)<img\b[^>]*?\bsrc\s*=\s*["']([^"']+)["'][^>]*>`)
	spacePattern  = regexp.MustCompile(`\s+`)

	// Strips every tag, leaving text content only
	stripTagsPolicy = bluemonday.StrictPolicy()
)

// ContentSummary holds the list-view derivations of a post's HTML content.
type ContentSummary struct {
	Excerpt    string
	Thumbnail  *string
	Thumbnails []string
	ImageCount int
}

// SummarizeContent derives the excerpt and inline-image fields from post
// HTML. Thumbnails are collected in order of appearance and capped at
// MaxThumbnails; ImageCount reflects the real total and may exceed the cap.
func SummarizeContent(content string) ContentSummary {
	var summary ContentSummary

	matches := imgSrcPattern.FindAllStringSubmatch(content, -1)
	summary.ImageCount = len(matches)
	for _, match := range matches {
		if len(summary.Thumbnails) == MaxThumbnails {
			break
		}
		summary.Thumbnails = append(summary.Thumbnails, match[1])
	}
	if len(summary.Thumbnails) > 0 {
		summary.Thumbnail = &summary.Thumbnails[0]
	}

	text := imgTagPattern.ReplaceAllString(content, " ")
	text = stripTagsPolicy.Sanitize(text)
	text = html.UnescapeString(text)
	text = spacePattern.ReplaceAllString(strings.TrimSpace(text), " ")

	runes := []rune(text)
	if len(runes) > ExcerptLength {
		text = string(runes[:ExcerptLength])
	}
	summary.Excerpt = text

	return summary
}

// TruncateContent bounds list-view payloads; detail views and
// include=content requests skip it.
func TruncateContent(content string, max int) string {
	runes := []rune(content)
	if len(runes) <= max {
		return content
	}
	return string(runes[:max])
}
