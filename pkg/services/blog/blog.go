// Package blog serves the embedded Markdown articles.
package blog

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed posts/*.md
var embedded embed.FS

const dateLayout = "2006-01-02"

var ErrNotFound = errors.New("post not found")

type Post struct {
	Slug        string    `yaml:"slug"`
	Title       string    `yaml:"title"`
	Description string    `yaml:"description"`
	Date        string    `yaml:"date"`
	Author      string    `yaml:"author"`
	ReadTime    string    `yaml:"readTime"`
	Tags        []string  `yaml:"tags"`
	Published   time.Time `yaml:"-"`
	Content     string    `yaml:"-"`
}

type Library struct {
	posts  []Post
	bySlug map[string]int
}

// NewLibrary loads the embedded posts.
func NewLibrary() (*Library, error) {
	return Load(embedded, "posts")
}

// Load reads every .md file under dir. Each file starts with a YAML front
// matter block delimited by "---" lines.
func Load(fsys fs.FS, dir string) (*Library, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read posts: %w", err)
	}

	lib := &Library{bySlug: map[string]int{}}
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".md" {
			continue
		}
		raw, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}
		p, err := parsePost(raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", e.Name(), err)
		}
		if p.Slug == "" {
			p.Slug = strings.TrimSuffix(e.Name(), ".md")
		}
		lib.posts = append(lib.posts, p)
	}

	slices.SortStableFunc(lib.posts, func(a, b Post) int {
		if c := b.Published.Compare(a.Published); c != 0 {
			return c
		}
		return strings.Compare(a.Slug, b.Slug)
	})
	for i, p := range lib.posts {
		if _, dup := lib.bySlug[p.Slug]; dup {
			return nil, fmt.Errorf("duplicate post slug %q", p.Slug)
		}
		lib.bySlug[p.Slug] = i
	}
	return lib, nil
}

func parsePost(raw []byte) (Post, error) {
	raw = bytes.ReplaceAll(raw, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(raw, []byte("---\n")) {
		return Post{}, errors.New("missing front matter")
	}
	rest := raw[len("---\n"):]
	end := bytes.Index(rest, []byte("\n---\n"))
	if end < 0 {
		return Post{}, errors.New("unterminated front matter")
	}

	var p Post
	if err := yaml.Unmarshal(rest[:end], &p); err != nil {
		return Post{}, fmt.Errorf("decode front matter: %w", err)
	}
	published, err := time.Parse(dateLayout, p.Date)
	if err != nil {
		return Post{}, fmt.Errorf("invalid date %q: %w", p.Date, err)
	}
	p.Published = published
	p.Content = string(rest[end+len("\n---\n"):])
	return p, nil
}

// All returns posts newest first.
func (l *Library) All() []Post {
	return slices.Clone(l.posts)
}

func (l *Library) BySlug(slug string) (Post, error) {
	i, ok := l.bySlug[slug]
	if !ok {
		return Post{}, ErrNotFound
	}
	return l.posts[i], nil
}
