package blog

import (
	"fmt"
	"html"
	"html/template"
	"regexp"
	"strings"
)

var (
	linkPattern     = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	boldPattern     = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	codePattern     = regexp.MustCompile("`([^`]+)`")
	orderedItem     = regexp.MustCompile(`^(\d+)\.\s(.+)`)
	separatorCell   = regexp.MustCompile(`^[-:]+$`)
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
)

// HeadingID turns a heading into the anchor id used for it.
func HeadingID(heading string) string {
	id := nonAlphanumeric.ReplaceAllString(strings.ToLower(heading), "-")
	return strings.Trim(id, "-")
}

type renderer struct {
	out strings.Builder

	inCode   bool
	codeLang string
	code     []string

	inTable bool
	header  []string
	rows    [][]string

	list string // "ul", "ol" or "" when no list is open
}

// Render converts the article subset of Markdown used by posts into HTML.
// All text is escaped; only the generated tags are emitted raw.
func Render(markdown string) template.HTML {
	r := &renderer{}
	for _, line := range strings.Split(markdown, "\n") {
		r.line(line)
	}
	if r.inCode {
		r.flushCode()
	}
	r.flushTable()
	r.closeList()
	return template.HTML(r.out.String())
}

func (r *renderer) line(line string) {
	if strings.HasPrefix(line, "```") {
		r.flushTable()
		r.closeList()
		if r.inCode {
			r.flushCode()
		} else {
			r.inCode = true
			r.codeLang = strings.TrimSpace(line[3:])
		}
		return
	}
	if r.inCode {
		r.code = append(r.code, line)
		return
	}

	if strings.HasPrefix(line, "|") && strings.HasSuffix(line, "|") {
		r.closeList()
		r.tableRow(line)
		return
	}
	r.flushTable()

	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		r.closeList()
	case strings.HasPrefix(line, "## "):
		r.closeList()
		text := line[3:]
		fmt.Fprintf(&r.out, "<h2 id=\"%s\">%s</h2>\n", HeadingID(text), html.EscapeString(text))
	case strings.HasPrefix(line, "### "):
		r.closeList()
		fmt.Fprintf(&r.out, "<h3>%s</h3>\n", html.EscapeString(line[4:]))
	case trimmed == "---":
		r.closeList()
		r.out.WriteString("<hr>\n")
	case strings.HasPrefix(line, "- "):
		r.openList("ul")
		fmt.Fprintf(&r.out, "<li>%s</li>\n", renderInline(line[2:]))
	default:
		if m := orderedItem.FindStringSubmatch(line); m != nil {
			r.openList("ol")
			fmt.Fprintf(&r.out, "<li>%s</li>\n", renderInline(m[2]))
			return
		}
		r.closeList()
		fmt.Fprintf(&r.out, "<p>%s</p>\n", renderInline(line))
	}
}

func (r *renderer) openList(tag string) {
	if r.list == tag {
		return
	}
	r.closeList()
	r.list = tag
	fmt.Fprintf(&r.out, "<%s>\n", tag)
}

func (r *renderer) closeList() {
	if r.list == "" {
		return
	}
	fmt.Fprintf(&r.out, "</%s>\n", r.list)
	r.list = ""
}

func (r *renderer) flushCode() {
	r.out.WriteString("<pre><code")
	if r.codeLang != "" {
		fmt.Fprintf(&r.out, " class=\"language-%s\"", html.EscapeString(r.codeLang))
	}
	r.out.WriteString(">")
	r.out.WriteString(html.EscapeString(strings.Join(r.code, "\n")))
	r.out.WriteString("</code></pre>\n")
	r.inCode = false
	r.codeLang = ""
	r.code = nil
}

func splitCells(line string) []string {
	var cells []string
	for _, c := range strings.Split(line, "|") {
		if c != "" {
			cells = append(cells, c)
		}
	}
	return cells
}

func (r *renderer) tableRow(line string) {
	cells := splitCells(line)
	if !r.inTable {
		r.inTable = true
		r.header = cells
		return
	}
	separator := true
	for _, c := range cells {
		if !separatorCell.MatchString(strings.TrimSpace(c)) {
			separator = false
			break
		}
	}
	if separator {
		return
	}
	r.rows = append(r.rows, cells)
}

func (r *renderer) flushTable() {
	if !r.inTable {
		return
	}
	if len(r.header) > 0 {
		r.out.WriteString("<table>\n<thead><tr>")
		for _, h := range r.header {
			fmt.Fprintf(&r.out, "<th>%s</th>", html.EscapeString(strings.TrimSpace(h)))
		}
		r.out.WriteString("</tr></thead>\n<tbody>\n")
		for _, row := range r.rows {
			r.out.WriteString("<tr>")
			for _, c := range row {
				c = strings.TrimSpace(c)
				if len(c) >= 2 && strings.HasPrefix(c, "`") && strings.HasSuffix(c, "`") {
					fmt.Fprintf(&r.out, "<td><code>%s</code></td>", html.EscapeString(c[1:len(c)-1]))
					continue
				}
				fmt.Fprintf(&r.out, "<td>%s</td>", html.EscapeString(c))
			}
			r.out.WriteString("</tr>\n")
		}
		r.out.WriteString("</tbody>\n</table>\n")
	}
	r.inTable = false
	r.header = nil
	r.rows = nil
}

// renderInline handles links, bold and inline code, taking whichever
// construct starts earliest. On a tie links win over bold over code.
func renderInline(text string) string {
	var b strings.Builder
	for text != "" {
		kind, loc := "", []int(nil)
		for _, c := range []struct {
			kind string
			re   *regexp.Regexp
		}{{"link", linkPattern}, {"bold", boldPattern}, {"code", codePattern}} {
			m := c.re.FindStringSubmatchIndex(text)
			if m != nil && (loc == nil || m[0] < loc[0]) {
				kind, loc = c.kind, m
			}
		}
		if loc == nil {
			b.WriteString(html.EscapeString(text))
			break
		}

		b.WriteString(html.EscapeString(text[:loc[0]]))
		inner := text[loc[2]:loc[3]]
		switch kind {
		case "link":
			href := text[loc[4]:loc[5]]
			fmt.Fprintf(&b, "<a href=\"%s\">%s</a>", html.EscapeString(safeHref(href)), html.EscapeString(inner))
		case "bold":
			fmt.Fprintf(&b, "<strong>%s</strong>", html.EscapeString(inner))
		case "code":
			fmt.Fprintf(&b, "<code>%s</code>", html.EscapeString(inner))
		}
		text = text[loc[1]:]
	}
	return b.String()
}

func safeHref(href string) string {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(href)), "javascript:") {
		return "#"
	}
	return href
}
