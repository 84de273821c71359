package richtext

// Type identifies the payload carried by a RichText run
type Type string

const (
	TypeText     Type = "text"
	TypeEquation Type = "equation"
	TypeMention  Type = "mention"
)

// MentionType identifies the entity a mention points at
type MentionType string

const (
	MentionPage       MentionType = "page"
	MentionDatabase   MentionType = "database"
	MentionDataSource MentionType = "data_source"
	MentionUser       MentionType = "user"
	MentionDate       MentionType = "date"
)

// RichText is one annotated run of inline content. Exactly one of Text,
// Equation or Mention is set, matching Type.
type RichText struct {
	Type        Type         `json:"type"`
	Text        *Text        `json:"text,omitempty"`
	Equation    *Equation    `json:"equation,omitempty"`
	Mention     *Mention     `json:"mention,omitempty"`
	Annotations *Annotations `json:"annotations,omitempty"`
	PlainText   string       `json:"plain_text,omitempty"`
	Href        string       `json:"href,omitempty"`
}

type Text struct {
	Content string `json:"content"`
	Link    *Link  `json:"link,omitempty"`
}

type Link struct {
	URL string `json:"url"`
}

type Equation struct {
	Expression string `json:"expression"`
}

// Mention references another entity. Exactly one of the pointer fields is set.
type Mention struct {
	Type       MentionType `json:"type"`
	Page       *Reference  `json:"page,omitempty"`
	Database   *Reference  `json:"database,omitempty"`
	DataSource *Reference  `json:"data_source,omitempty"`
	User       *Reference  `json:"user,omitempty"`
	Date       *DateRange  `json:"date,omitempty"`
}

type Reference struct {
	Object string `json:"object,omitempty"`
	ID     string `json:"id"`
}

type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end,omitempty"`
}

type Annotations struct {
	Bold          bool  `json:"bold"`
	Italic        bool  `json:"italic"`
	Strikethrough bool  `json:"strikethrough"`
	Underline     bool  `json:"underline"`
	Code          bool  `json:"code"`
	Color         Color `json:"color"`
}

// NewText returns an unannotated text run
func NewText(content string) RichText {
	return RichText{
		Type:        TypeText,
		Text:        &Text{Content: content},
		Annotations: &Annotations{Color: ColorDefault},
		PlainText:   content,
	}
}

// NewLink returns a text run linking to url
func NewLink(content, url string) RichText {
	rt := NewText(content)
	rt.Text.Link = &Link{URL: url}
	rt.Href = url
	return rt
}

// NewEquation returns an inline equation run
func NewEquation(expr string) RichText {
	return RichText{
		Type:        TypeEquation,
		Equation:    &Equation{Expression: expr},
		Annotations: &Annotations{Color: ColorDefault},
		PlainText:   expr,
	}
}

// NewMention returns a mention run of the given kind pointing at id. Date
// mentions should use NewDateMention.
func NewMention(kind MentionType, id string) RichText {
	m := &Mention{Type: kind}
	ref := &Reference{ID: id}
	switch kind {
	case MentionPage:
		m.Page = ref
	case MentionDatabase:
		m.Database = ref
	case MentionDataSource:
		m.DataSource = ref
	case MentionUser:
		ref.Object = "user"
		m.User = ref
	}
	return RichText{
		Type:        TypeMention,
		Mention:     m,
		Annotations: &Annotations{Color: ColorDefault},
		PlainText:   id,
	}
}

// NewDateMention returns a date mention; end may be empty
func NewDateMention(start, end string) RichText {
	plain := start
	if end != "" {
		plain = start + DateSeparator + end
	}
	return RichText{
		Type:        TypeMention,
		Mention:     &Mention{Type: MentionDate, Date: &DateRange{Start: start, End: end}},
		Annotations: &Annotations{Color: ColorDefault},
		PlainText:   plain,
	}
}

// Annots returns the run's annotations, defaulting when absent
func (r RichText) Annots() Annotations {
	if r.Annotations == nil {
		return Annotations{Color: ColorDefault}
	}
	a := *r.Annotations
	if a.Color == "" {
		a.Color = ColorDefault
	}
	return a
}

// LinkURL returns the run's link target, or "" when unlinked
func (r RichText) LinkURL() string {
	if r.Text != nil && r.Text.Link != nil {
		return r.Text.Link.URL
	}
	return ""
}

// ID returns the referenced entity ID for page, database, data source and
// user mentions
func (m *Mention) ID() string {
	switch {
	case m.Page != nil:
		return m.Page.ID
	case m.Database != nil:
		return m.Database.ID
	case m.DataSource != nil:
		return m.DataSource.ID
	case m.User != nil:
		return m.User.ID
	}
	return ""
}

// PlainText concatenates the plain content of runs, ignoring formatting
func PlainText(runs []RichText) string {
	var s string
	for _, r := range runs {
		switch {
		case r.Text != nil:
			s += r.Text.Content
		case r.Equation != nil:
			s += r.Equation.Expression
		default:
			s += r.PlainText
		}
	}
	return s
}
