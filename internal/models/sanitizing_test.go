package models

import (
	"strings"
	"testing"
	"time"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func TestSplitContent(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		want    []Segment
	}{
		{
			name:    "no links",
			content: "no links here",
			want:    []Segment{{Text: "no links here"}},
		},
		{
			name:    "link in the middle",
			content: "see http://example.com now",
			want: []Segment{
				{Text: "see "},
				{Text: "http://example.com", IsLink: true},
				{Text: " now"},
			},
		},
		{
			name:    "only a link",
			content: "https://example.com/a?b=c#d",
			want:    []Segment{{Text: "https://example.com/a?b=c#d", IsLink: true}},
		},
		{
			name:    "adjacent links separated by newline",
			content: "http://a.example\nhttps://b.example",
			want: []Segment{
				{Text: "http://a.example", IsLink: true},
				{Text: "\n"},
				{Text: "https://b.example", IsLink: true},
			},
		},
		{
			name:    "scheme without host is text",
			content: "http:// alone",
			want:    []Segment{{Text: "http:// alone"}},
		},
		{
			name:    "text starting with http is not a link",
			content: "httpd runs",
			want:    []Segment{{Text: "httpd runs"}},
		},
		{
			name:    "uppercase scheme is not matched",
			content: "HTTP://EXAMPLE.COM",
			want:    []Segment{{Text: "HTTP://EXAMPLE.COM"}},
		},
		{
			name:    "no-break space ends a link",
			content: "http://example.com\u00a0next",
			want: []Segment{
				{Text: "http://example.com", IsLink: true},
				{Text: "\u00a0next"},
			},
		},
		{
			name:    "empty",
			content: "",
			want:    nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.DeepEqual(t, SplitContent(tc.content), tc.want)
		})
	}
}

func TestSplitContentRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"plain",
		"a http://x.example b https://y.example/path c",
		"http://x.example,http://y.example",
		"\t\thttps://z.example\r\n",
		"<script>alert(1)</script> http://evil.example/\"onmouseover=x",
		"日本語 https://例え.jp/パス 終わり",
	}
	for _, in := range inputs {
		var sb strings.Builder
		links := 0
		for _, seg := range SplitContent(in) {
			sb.WriteString(seg.Text)
			if seg.IsLink {
				links++
				assert.Assert(t, linkPattern.MatchString(seg.Text))
			} else {
				assert.Assert(t, !linkPattern.MatchString(seg.Text), "text segment %q contains a link", seg.Text)
			}
		}
		assert.Equal(t, sb.String(), in)
		assert.Equal(t, links, len(linkPattern.FindAllString(in, -1)))
	}
}

func TestRenderContent(t *testing.T) {
	got := string(RenderContent("see http://example.com now"))
	assert.Equal(t, got, `see <a href="http://example.com" target="_blank" rel="noopener noreferrer" class="post-link">http://example.com</a> now`)

	got = string(RenderContent("no links here"))
	assert.Equal(t, got, "no links here")
	assert.Assert(t, !strings.Contains(got, "<a"))
}

func TestRenderContentEscapesMarkup(t *testing.T) {
	got := string(RenderContent(`<img src=x onerror=alert(1)> http://a.example/"><script>`))
	assert.Assert(t, !strings.Contains(got, "<img"))
	assert.Assert(t, !strings.Contains(got, "<script"))
	assert.Assert(t, is.Contains(got, "&lt;img src=x onerror=alert(1)&gt;"))
	assert.Assert(t, is.Contains(got, `href="http://a.example/&#34;&gt;&lt;script&gt;"`))
	assert.Equal(t, strings.Count(got, "<a "), 1)
}

func TestStripControl(t *testing.T) {
	assert.Equal(t, StripControl("a\x1b[31mred\x1b[0m\tb\nc\x07"), "a[31mred[0m\tb\nc")
}

func TestRenderContentCached(t *testing.T) {
	InitRenderCache(8, time.Minute)
	defer InitRenderCache(0, 0)

	first := RenderContent("go http://a.b")
	second := RenderContent("go http://a.b")
	assert.Equal(t, first, second)
	assert.Equal(t, GetRenderCache().Len(), 1)
	stats := GetRenderCache().Stats()
	assert.Equal(t, stats["hits"], int64(1))
}
