package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSummarizeContentPlainText(t *testing.T) {
	summary := SummarizeContent("<p>Hello <b>world</b></p>")
	require.Equal(t, "Hello world", summary.Excerpt)
	require.Nil(t, summary.Thumbnail)
	require.Empty(t, summary.Thumbnails)
	require.Equal(t, 0, summary.ImageCount)
}

func TestSummarizeContentExtractsThumbnails(t *testing.T) {
	content := `<p>Before</p><img src="/a.jpg"><p>Mid</p><img alt="x" src='/b.png'/>`
	summary := SummarizeContent(content)

	require.Equal(t, 2, summary.ImageCount)
	require.Equal(t, []string{"/a.jpg", "/b.png"}, summary.Thumbnails)
	require.NotNil(t, summary.Thumbnail)
	require.Equal(t, "/a.jpg", *summary.Thumbnail)
	require.Equal(t, "Before Mid", summary.Excerpt)
}

func TestSummarizeContentCapsThumbnailsButCountsAll(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 7; i++ {
		fmt.Fprintf(&sb, `<img src="/img-%d.jpg">`, i)
	}
	summary := SummarizeContent(sb.String())

	require.Equal(t, 7, summary.ImageCount)
	require.Len(t, summary.Thumbnails, MaxThumbnails)
	require.Equal(t, "/img-0.jpg", *summary.Thumbnail)
}

func TestSummarizeContentIgnoresImagesWithoutSrc(t *testing.T) {
	summary := SummarizeContent(`<img alt="broken"><p>text</p>`)
	require.Equal(t, 0, summary.ImageCount)
	require.Nil(t, summary.Thumbnail)
	require.Equal(t, "text", summary.Excerpt)
}

func TestSummarizeContentUnescapesEntities(t *testing.T) {
	summary := SummarizeContent("<p>Fish &amp; chips &lt;3</p>")
	require.Equal(t, "Fish & chips <3", summary.Excerpt)
}

func TestSummarizeContentTruncatesByRunes(t *testing.T) {
	content := "<p>" + strings.Repeat("면", 300) + "</p>"
	summary := SummarizeContent(content)
	require.Equal(t, ExcerptLength, len([]rune(summary.Excerpt)))
}

func TestSummarizeContentCollapsesWhitespace(t *testing.T) {
	summary := SummarizeContent("<p>one</p>\n\n  <p>two\tthree</p>")
	require.Equal(t, "one two three", summary.Excerpt)
}

func TestTruncateContent(t *testing.T) {
	require.Equal(t, "abc", TruncateContent("abc", 10))
	require.Equal(t, "ab", TruncateContent("abcd", 2))
	require.Equal(t, "하나둘", TruncateContent("하나둘셋", 3))
}
