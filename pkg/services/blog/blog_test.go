package blog

import (
	"encoding/xml"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseHTML(t *testing.T, s string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	require.NoError(t, err)
	return doc
}

func TestNewLibrary_EmbeddedPosts(t *testing.T) {
	lib, err := NewLibrary()
	require.NoError(t, err)

	posts := lib.All()
	require.Len(t, posts, 4)
	for _, p := range posts {
		assert.NotEmpty(t, p.Title, p.Slug)
		assert.NotEmpty(t, p.Content, p.Slug)
		assert.False(t, p.Published.IsZero(), p.Slug)
	}

	p, err := lib.BySlug("openclaw-security-guide-2026")
	require.NoError(t, err)
	assert.Equal(t, "Milo", p.Author)
	assert.Contains(t, p.Tags, "hardening")

	_, err = lib.BySlug("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoad_OrdersNewestFirst(t *testing.T) {
	fsys := fstest.MapFS{
		"posts/old.md":    {Data: []byte("---\ntitle: Old\ndate: \"2025-01-01\"\n---\nbody\n")},
		"posts/new.md":    {Data: []byte("---\nslug: fresh\ntitle: New\ndate: \"2026-01-01\"\n---\nbody\n")},
		"posts/notes.txt": {Data: []byte("ignored")},
	}

	lib, err := Load(fsys, "posts")
	require.NoError(t, err)

	posts := lib.All()
	require.Len(t, posts, 2)
	assert.Equal(t, "fresh", posts[0].Slug)
	assert.Equal(t, "old", posts[1].Slug)
	assert.Equal(t, "body\n", posts[1].Content)
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]string{
		"no front matter": "# hello",
		"unterminated":    "---\ntitle: x\n",
		"bad date":        "---\ntitle: x\ndate: \"yesterday\"\n---\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(fstest.MapFS{"p/x.md": {Data: []byte(body)}}, "p")
			assert.Error(t, err)
		})
	}
}

func TestRender_Blocks(t *testing.T) {
	md := strings.Join([]string{
		"## Step 1: Bind Your Gateway!",
		"### Why",
		"Intro with **bold**, `code` and [a link](https://getmilo.dev).",
		"",
		"```yaml",
		"host: 127.0.0.1 <tag>",
		"```",
		"- first",
		"- second",
		"1. one",
		"2. two",
		"---",
		"| Setting | Value |",
		"|---------|:-----:|",
		"| exec | `allowlist` |",
		"after table",
	}, "\n")

	doc := parseHTML(t, string(Render(md)))

	h2 := doc.Find("h2")
	assert.Equal(t, "step-1-bind-your-gateway", h2.AttrOr("id", ""))
	assert.Equal(t, "Step 1: Bind Your Gateway!", h2.Text())
	assert.Equal(t, "Why", doc.Find("h3").Text())

	p := doc.Find("p").First()
	assert.Equal(t, "bold", p.Find("strong").Text())
	assert.Equal(t, "code", p.Find("code").Text())
	assert.Equal(t, "https://getmilo.dev", p.Find("a").AttrOr("href", ""))

	code := doc.Find("pre code")
	assert.True(t, code.HasClass("language-yaml"))
	assert.Equal(t, "host: 127.0.0.1 <tag>", code.Text())

	assert.Equal(t, 2, doc.Find("ul li").Length())
	assert.Equal(t, 2, doc.Find("ol li").Length())
	assert.Equal(t, "two", doc.Find("ol li").Last().Text())
	assert.Equal(t, 1, doc.Find("hr").Length())

	assert.Equal(t, []string{"Setting", "Value"}, doc.Find("th").Map(func(_ int, s *goquery.Selection) string { return s.Text() }))
	assert.Equal(t, 1, doc.Find("tbody tr").Length())
	assert.Equal(t, "allowlist", doc.Find("td code").Text())
	assert.Equal(t, "after table", doc.Find("p").Last().Text())
}

func TestRender_EscapesText(t *testing.T) {
	out := string(Render("<script>alert(1)</script> and [x](javascript:alert(1))"))

	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, `href="#"`)
}

func TestRenderInline_EarliestMatchWins(t *testing.T) {
	// the code span starts before the bold markers inside it
	assert.Equal(t, "<code>**not bold**</code> then <strong>bold</strong>",
		renderInline("`**not bold**` then **bold**"))
	assert.Equal(t, "plain &amp; simple", renderInline("plain & simple"))
}

func TestSitemap(t *testing.T) {
	lib, err := NewLibrary()
	require.NoError(t, err)

	raw, err := lib.Sitemap("https://getmilo.dev/", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	var set URLSet
	require.NoError(t, xml.Unmarshal(raw, &set))
	require.Len(t, set.URLs, 3+4)
	assert.Equal(t, "https://getmilo.dev", set.URLs[0].Loc)
	assert.Equal(t, "2026-03-01", set.URLs[0].LastMod)
	assert.Equal(t, "https://getmilo.dev/setup", set.URLs[1].Loc)
	assert.Equal(t, "https://getmilo.dev/blog", set.URLs[2].Loc)
	assert.True(t, strings.HasPrefix(set.URLs[3].Loc, "https://getmilo.dev/blog/"))
	assert.Equal(t, 0.8, set.URLs[3].Priority)
}
