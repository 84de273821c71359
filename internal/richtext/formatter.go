package richtext

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// DateSeparator joins the start and end of a date range mention
const DateSeparator = "–"

// Resolver maps between display names and entity IDs for mentions.
// Implementations report ok=false when a lookup fails; the formatter never
// treats that as an error.
type Resolver interface {
	NameToID(kind MentionType, name string) (string, bool)
	IDToName(kind MentionType, id string) (string, bool)
}

// Formatter converts between inline Markdown and rich text runs. A Formatter
// holds no per-call state and is safe for concurrent use.
type Formatter struct {
	resolver Resolver
}

// NewFormatter creates a formatter. r may be nil, in which case mention
// tokens only resolve when they already carry an ID.
func NewFormatter(r Resolver) *Formatter {
	return &Formatter{resolver: r}
}

type inlineMatch struct {
	start, end int
	groups     []string
}

type inlinePattern struct {
	name  string
	find  func(s string) (inlineMatch, bool)
	build func(f *Formatter, m inlineMatch, raw string) []RichText
}

var (
	boldPattern          = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicPattern        = regexp.MustCompile(`\*(.+?)\*`)
	underlinePattern     = regexp.MustCompile(`__(.+?)__`)
	italicUnderPattern   = regexp.MustCompile(`_([^_]+?)_`)
	strikethroughPattern = regexp.MustCompile(`~~(.+?)~~`)
	codePattern          = regexp.MustCompile("`(.+?)`")
	linkPattern          = regexp.MustCompile(`\[(.+?)\]\((.+?)\)`)
	equationPattern      = regexp.MustCompile(`\$(.+?)\$`)
	pageMentionPattern   = regexp.MustCompile(`@page\[([^\]]+)\]`)
	dbMentionPattern     = regexp.MustCompile(`@database\[([^\]]+)\]`)
	dsMentionPattern     = regexp.MustCompile(`@datasource\[([^\]]+)\]`)
	userMentionPattern   = regexp.MustCompile(`@user\[([^\]]+)\]`)
	dateMentionPattern   = regexp.MustCompile(`@date\[([^\]]+)\]`)
)

// patterns are tried in declaration order; the earliest match wins and
// ties go to the pattern declared first. Builders recurse into Parse, so
// the table is filled in init.
var patterns []inlinePattern

func init() {
	patterns = []inlinePattern{
		{"bold", findBold, annotate(func(a *Annotations) { a.Bold = true })},
		{"italic", regexFinder(italicPattern), annotate(func(a *Annotations) { a.Italic = true })},
		{"underline", regexFinder(underlinePattern), annotate(func(a *Annotations) { a.Underline = true })},
		{"italic_underscore", regexFinder(italicUnderPattern), annotate(func(a *Annotations) { a.Italic = true })},
		{"strikethrough", regexFinder(strikethroughPattern), annotate(func(a *Annotations) { a.Strikethrough = true })},
		{"code", regexFinder(codePattern), buildCode},
		{"link", regexFinder(linkPattern), buildLink},
		{"equation", regexFinder(equationPattern), buildEquation},
		{"color", findColor, buildColor},
		{"page_mention", regexFinder(pageMentionPattern), mentionBuilder(MentionPage)},
		{"database_mention", regexFinder(dbMentionPattern), mentionBuilder(MentionDatabase)},
		{"datasource_mention", regexFinder(dsMentionPattern), mentionBuilder(MentionDataSource)},
		{"user_mention", regexFinder(userMentionPattern), mentionBuilder(MentionUser)},
		{"date_mention", regexFinder(dateMentionPattern), buildDate},
	}
}

// Parse splits text into rich text runs. Plain stretches between matches
// become unannotated runs. Malformed markers are kept as literal text.
func (f *Formatter) Parse(text string) []RichText {
	runs := []RichText{}
	rest := text
	for rest != "" {
		best := -1
		var bestMatch inlineMatch
		for i, p := range patterns {
			m, ok := p.find(rest)
			if !ok {
				continue
			}
			if best < 0 || m.start < bestMatch.start {
				best, bestMatch = i, m
			}
		}
		if best < 0 {
			runs = append(runs, NewText(rest))
			break
		}
		if bestMatch.start > 0 {
			runs = append(runs, NewText(rest[:bestMatch.start]))
		}
		raw := rest[bestMatch.start:bestMatch.end]
		runs = append(runs, patterns[best].build(f, bestMatch, raw)...)
		rest = rest[bestMatch.end:]
	}
	return runs
}

// Render converts runs back to inline Markdown. Consecutive runs sharing a
// color are wrapped once, and likewise for a shared link.
func (f *Formatter) Render(runs []RichText) string {
	var b strings.Builder
	for i := 0; i < len(runs); {
		color := runs[i].Annots().Color
		j := i + 1
		for j < len(runs) && runs[j].Annots().Color == color {
			j++
		}
		inner := f.renderLinked(runs[i:j])
		if color.IsDefault() {
			b.WriteString(inner)
		} else {
			b.WriteString("(" + string(color) + ":" + inner + ")")
		}
		i = j
	}
	return b.String()
}

func (f *Formatter) renderLinked(runs []RichText) string {
	var b strings.Builder
	for i := 0; i < len(runs); {
		url := runs[i].LinkURL()
		j := i + 1
		for j < len(runs) && runs[j].LinkURL() == url {
			j++
		}
		var inner strings.Builder
		for _, r := range joinText(runs[i:j]) {
			inner.WriteString(f.renderRun(r))
		}
		if url == "" {
			b.WriteString(inner.String())
		} else {
			b.WriteString("[" + inner.String() + "](" + url + ")")
		}
		i = j
	}
	return b.String()
}

// joinText merges adjacent text runs with identical annotations so a run
// split for length renders as one span
func joinText(runs []RichText) []RichText {
	out := make([]RichText, 0, len(runs))
	for _, r := range runs {
		n := len(out)
		if n > 0 && r.Type == TypeText && out[n-1].Type == TypeText &&
			r.Text != nil && out[n-1].Text != nil && r.Annots() == out[n-1].Annots() {
			content := out[n-1].Text.Content + r.Text.Content
			out[n-1] = NewText(content)
			out[n-1].Annotations = r.Annotations
			continue
		}
		out = append(out, r)
	}
	return out
}

func (f *Formatter) renderRun(r RichText) string {
	switch r.Type {
	case TypeEquation:
		if r.Equation == nil {
			return ""
		}
		return "$" + r.Equation.Expression + "$"
	case TypeMention:
		if r.Mention == nil {
			return r.PlainText
		}
		return f.renderMention(r.Mention)
	}

	content := r.PlainText
	if r.Text != nil {
		content = r.Text.Content
	}
	if content == "" {
		return ""
	}
	a := r.Annots()
	if a.Code {
		content = "`" + content + "`"
	}
	if a.Strikethrough {
		content = "~~" + content + "~~"
	}
	if a.Underline {
		content = "__" + content + "__"
	}
	if a.Italic {
		content = "*" + content + "*"
	}
	if a.Bold {
		content = "**" + content + "**"
	}
	return content
}

var mentionTokens = map[MentionType]string{
	MentionPage:       "page",
	MentionDatabase:   "database",
	MentionDataSource: "datasource",
	MentionUser:       "user",
	MentionDate:       "date",
}

func (f *Formatter) renderMention(m *Mention) string {
	if m.Type == MentionDate {
		if m.Date == nil {
			return ""
		}
		value := m.Date.Start
		if m.Date.End != "" {
			value += DateSeparator + m.Date.End
		}
		return "@date[" + value + "]"
	}

	id := m.ID()
	value := id
	if f.resolver != nil {
		if name, ok := f.resolver.IDToName(m.Type, id); ok && name != "" {
			value = name
		}
	}
	token, ok := mentionTokens[m.Type]
	if !ok {
		return value
	}
	return "@" + token + "[" + value + "]"
}

func regexFinder(re *regexp.Regexp) func(string) (inlineMatch, bool) {
	return func(s string) (inlineMatch, bool) {
		loc := re.FindStringSubmatchIndex(s)
		if loc == nil {
			return inlineMatch{}, false
		}
		m := inlineMatch{start: loc[0], end: loc[1]}
		for i := 2; i+1 < len(loc); i += 2 {
			if loc[i] < 0 {
				m.groups = append(m.groups, "")
				continue
			}
			m.groups = append(m.groups, s[loc[i]:loc[i+1]])
		}
		return m, true
	}
}

// findBold treats ***x*** as bold wrapping *x* rather than leaving a stray
// trailing asterisk.
func findBold(s string) (inlineMatch, bool) {
	m, ok := regexFinder(boldPattern)(s)
	if !ok {
		return m, false
	}
	if strings.HasPrefix(m.groups[0], "*") && m.end < len(s) && s[m.end] == '*' {
		m.groups[0] += "*"
		m.end++
	}
	return m, true
}

// findColor matches (name:content) where content may itself contain
// balanced parentheses, such as a link.
func findColor(s string) (inlineMatch, bool) {
outer:
	for i := 0; i < len(s); i++ {
		if s[i] != '(' {
			continue
		}
		j := i + 1
		for j < len(s) && isWordByte(s[j]) {
			j++
		}
		if j == i+1 || j >= len(s) || s[j] != ':' {
			continue
		}
		depth := 0
		for k := j + 1; k < len(s); k++ {
			switch s[k] {
			case '(':
				depth++
			case ')':
				if depth > 0 {
					depth--
					continue
				}
				if k == j+1 {
					continue outer
				}
				return inlineMatch{start: i, end: k + 1, groups: []string{s[i+1 : j], s[j+1 : k]}}, true
			}
		}
	}
	return inlineMatch{}, false
}

func isWordByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func annotate(set func(*Annotations)) func(*Formatter, inlineMatch, string) []RichText {
	return func(f *Formatter, m inlineMatch, _ string) []RichText {
		inner := f.Parse(m.groups[0])
		for i := range inner {
			if inner[i].Type != TypeText {
				continue
			}
			a := inner[i].Annots()
			set(&a)
			inner[i].Annotations = &a
		}
		return inner
	}
}

func buildCode(_ *Formatter, m inlineMatch, _ string) []RichText {
	rt := NewText(m.groups[0])
	rt.Annotations.Code = true
	return []RichText{rt}
}

func buildLink(f *Formatter, m inlineMatch, _ string) []RichText {
	url := m.groups[1]
	inner := f.Parse(m.groups[0])
	for i := range inner {
		if inner[i].Type != TypeText {
			continue
		}
		text := *inner[i].Text
		text.Link = &Link{URL: url}
		inner[i].Text = &text
		inner[i].Href = url
	}
	return inner
}

func buildEquation(_ *Formatter, m inlineMatch, _ string) []RichText {
	return []RichText{NewEquation(m.groups[0])}
}

func buildColor(f *Formatter, m inlineMatch, raw string) []RichText {
	color, ok := ParseColor(m.groups[0])
	if !ok {
		return []RichText{NewText(raw)}
	}
	inner := f.Parse(m.groups[1])
	for i := range inner {
		if inner[i].Type != TypeText {
			continue
		}
		a := inner[i].Annots()
		a.Color = color
		inner[i].Annotations = &a
	}
	return inner
}

func mentionBuilder(kind MentionType) func(*Formatter, inlineMatch, string) []RichText {
	return func(f *Formatter, m inlineMatch, raw string) []RichText {
		value := strings.TrimSpace(m.groups[0])
		id, ok := f.resolveID(kind, value)
		if !ok {
			return []RichText{NewText(raw)}
		}
		rt := NewMention(kind, id)
		rt.PlainText = value
		return []RichText{rt}
	}
}

func (f *Formatter) resolveID(kind MentionType, value string) (string, bool) {
	if value == "" {
		return "", false
	}
	if IsID(value) {
		return value, true
	}
	if f.resolver == nil {
		return "", false
	}
	id, ok := f.resolver.NameToID(kind, value)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

func buildDate(_ *Formatter, m inlineMatch, raw string) []RichText {
	start, end, _ := strings.Cut(m.groups[0], DateSeparator)
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" {
		return []RichText{NewText(raw)}
	}
	return []RichText{NewDateMention(start, end)}
}

// IsID reports whether s is a Notion ID, dashed or in the 32-hex form
func IsID(s string) bool {
	if len(s) != 32 && len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
