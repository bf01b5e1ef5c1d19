package blog

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type URLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []SitemapURL `xml:"url"`
}

type SitemapURL struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod"`
	ChangeFreq string  `xml:"changefreq"`
	Priority   float64 `xml:"priority"`
}

// Sitemap lists the home page, the setup guide, the blog index and every post.
func (l *Library) Sitemap(baseURL string, now time.Time) ([]byte, error) {
	base := strings.TrimRight(baseURL, "/")
	today := now.UTC().Format(dateLayout)

	set := URLSet{
		Xmlns: sitemapNS,
		URLs: []SitemapURL{
			{Loc: base, LastMod: today, ChangeFreq: "weekly", Priority: 1},
			{Loc: base + "/setup", LastMod: today, ChangeFreq: "monthly", Priority: 0.9},
			{Loc: base + "/blog", LastMod: today, ChangeFreq: "weekly", Priority: 0.9},
		},
	}
	for _, p := range l.posts {
		set.URLs = append(set.URLs, SitemapURL{
			Loc:        base + "/blog/" + p.Slug,
			LastMod:    p.Date,
			ChangeFreq: "monthly",
			Priority:   0.8,
		})
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode sitemap: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}
