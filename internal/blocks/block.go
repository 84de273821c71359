package blocks

import (
	"github.com/gerunddev/notionbridge/internal/richtext"
)

// Type is the discriminator of a Block
type Type string

const (
	TypeParagraph        Type = "paragraph"
	TypeHeading1         Type = "heading_1"
	TypeHeading2         Type = "heading_2"
	TypeHeading3         Type = "heading_3"
	TypeBulletedListItem Type = "bulleted_list_item"
	TypeNumberedListItem Type = "numbered_list_item"
	TypeToDo             Type = "to_do"
	TypeToggle           Type = "toggle"
	TypeQuote            Type = "quote"
	TypeCallout          Type = "callout"
	TypeCode             Type = "code"
	TypeTable            Type = "table"
	TypeTableRow         Type = "table_row"
	TypeColumnList       Type = "column_list"
	TypeColumn           Type = "column"
	TypeDivider          Type = "divider"
	TypeBookmark         Type = "bookmark"
	TypeEmbed            Type = "embed"
	TypeEquation         Type = "equation"
	TypeImage            Type = "image"
	TypeVideo            Type = "video"
	TypeAudio            Type = "audio"
	TypeFile             Type = "file"
	TypePDF              Type = "pdf"
	TypeTableOfContents  Type = "table_of_contents"
	TypeBreadcrumb       Type = "breadcrumb"
	TypeChildPage        Type = "child_page"
	TypeSyncedBlock      Type = "synced_block"
)

// Block is a Notion block. Type selects which payload field is set.
// Creation payloads carry children inside the payload; fetched blocks carry
// the envelope fields and, once hydrated, Children.
type Block struct {
	Object         string `json:"object,omitempty"`
	ID             string `json:"id,omitempty"`
	CreatedTime    string `json:"created_time,omitempty"`
	LastEditedTime string `json:"last_edited_time,omitempty"`
	CreatedBy      *User  `json:"created_by,omitempty"`
	LastEditedBy   *User  `json:"last_edited_by,omitempty"`
	Archived       bool   `json:"archived,omitempty"`
	InTrash        bool   `json:"in_trash,omitempty"`
	HasChildren    bool   `json:"has_children,omitempty"`
	Type           Type   `json:"type"`

	Paragraph        *TextBlock       `json:"paragraph,omitempty"`
	Heading1         *Heading         `json:"heading_1,omitempty"`
	Heading2         *Heading         `json:"heading_2,omitempty"`
	Heading3         *Heading         `json:"heading_3,omitempty"`
	BulletedListItem *TextBlock       `json:"bulleted_list_item,omitempty"`
	NumberedListItem *TextBlock       `json:"numbered_list_item,omitempty"`
	ToDo             *ToDo            `json:"to_do,omitempty"`
	Toggle           *TextBlock       `json:"toggle,omitempty"`
	Quote            *TextBlock       `json:"quote,omitempty"`
	Callout          *Callout         `json:"callout,omitempty"`
	Code             *Code            `json:"code,omitempty"`
	Table            *Table           `json:"table,omitempty"`
	TableRow         *TableRow        `json:"table_row,omitempty"`
	ColumnList       *Container       `json:"column_list,omitempty"`
	Column           *Column          `json:"column,omitempty"`
	Divider          *Empty           `json:"divider,omitempty"`
	Bookmark         *Link            `json:"bookmark,omitempty"`
	Embed            *Link            `json:"embed,omitempty"`
	Equation         *Equation        `json:"equation,omitempty"`
	Image            *File            `json:"image,omitempty"`
	Video            *File            `json:"video,omitempty"`
	Audio            *File            `json:"audio,omitempty"`
	File             *File            `json:"file,omitempty"`
	PDF              *File            `json:"pdf,omitempty"`
	TableOfContents  *TableOfContents `json:"table_of_contents,omitempty"`
	Breadcrumb       *Empty           `json:"breadcrumb,omitempty"`
	ChildPage        *ChildPage       `json:"child_page,omitempty"`
	SyncedBlock      *SyncedBlock     `json:"synced_block,omitempty"`

	// Children holds hydrated children of a fetched block
	Children []Block `json:"children,omitempty"`
}

type User struct {
	Object string `json:"object,omitempty"`
	ID     string `json:"id"`
}

// TextBlock is the payload of paragraph, list item, toggle and quote blocks
type TextBlock struct {
	RichText []richtext.RichText `json:"rich_text"`
	Color    richtext.Color      `json:"color,omitempty"`
	Children []Block             `json:"children,omitempty"`
}

type Heading struct {
	RichText     []richtext.RichText `json:"rich_text"`
	Color        richtext.Color      `json:"color,omitempty"`
	IsToggleable bool                `json:"is_toggleable"`
	Children     []Block             `json:"children,omitempty"`
}

type ToDo struct {
	RichText []richtext.RichText `json:"rich_text"`
	Checked  bool                `json:"checked"`
	Color    richtext.Color      `json:"color,omitempty"`
	Children []Block             `json:"children,omitempty"`
}

type Callout struct {
	RichText []richtext.RichText `json:"rich_text"`
	Icon     *Icon               `json:"icon,omitempty"`
	Color    richtext.Color      `json:"color,omitempty"`
	Children []Block             `json:"children,omitempty"`
}

type Icon struct {
	Type  string `json:"type"`
	Emoji string `json:"emoji,omitempty"`
}

type Code struct {
	Caption  []richtext.RichText `json:"caption"`
	RichText []richtext.RichText `json:"rich_text"`
	Language string              `json:"language"`
}

type Table struct {
	TableWidth      int     `json:"table_width"`
	HasColumnHeader bool    `json:"has_column_header"`
	HasRowHeader    bool    `json:"has_row_header"`
	Children        []Block `json:"children,omitempty"`
}

type TableRow struct {
	Cells [][]richtext.RichText `json:"cells"`
}

// Container is a payload whose only content is its children
type Container struct {
	Children []Block `json:"children,omitempty"`
}

type Column struct {
	WidthRatio *float64 `json:"width_ratio,omitempty"`
	Children   []Block  `json:"children,omitempty"`
}

// Empty is the payload of blocks without content, such as divider
type Empty struct{}

// Link is the payload of bookmark and embed blocks
type Link struct {
	URL     string              `json:"url"`
	Caption []richtext.RichText `json:"caption,omitempty"`
}

type Equation struct {
	Expression string `json:"expression"`
}

// File is the payload of image, video, audio, file and pdf blocks
type File struct {
	Type     string              `json:"type"`
	External *ExternalFile       `json:"external,omitempty"`
	File     *HostedFile         `json:"file,omitempty"`
	Caption  []richtext.RichText `json:"caption,omitempty"`
	Name     string              `json:"name,omitempty"`
}

type ExternalFile struct {
	URL string `json:"url"`
}

// HostedFile is a file uploaded to Notion; URL expires
type HostedFile struct {
	URL        string `json:"url"`
	ExpiryTime string `json:"expiry_time,omitempty"`
}

// URL returns the external or hosted file URL
func (f *File) URL() string {
	switch {
	case f.External != nil:
		return f.External.URL
	case f.File != nil:
		return f.File.URL
	}
	return ""
}

type TableOfContents struct {
	Color richtext.Color `json:"color,omitempty"`
}

type ChildPage struct {
	Title string `json:"title"`
}

// SyncedBlock is an original synced block when SyncedFrom is nil and a
// copy of the block SyncedFrom names otherwise
type SyncedBlock struct {
	SyncedFrom *SyncedFrom `json:"synced_from"`
	Children   []Block     `json:"children,omitempty"`
}

type SyncedFrom struct {
	Type    string `json:"type"`
	BlockID string `json:"block_id"`
}

// New returns a creation payload envelope of type t
func New(t Type) Block {
	return Block{Object: "block", Type: t}
}

// EmptyParagraph is the spacer the Notion editor inserts after media blocks
func EmptyParagraph() Block {
	b := New(TypeParagraph)
	b.Paragraph = &TextBlock{RichText: []richtext.RichText{}, Color: richtext.ColorDefault}
	return b
}

// ChildBlocks returns the hydrated children of a fetched block, falling back
// to the children of a creation payload
func (b *Block) ChildBlocks() []Block {
	// A synced copy's content belongs to its original
	if b.SyncedBlock != nil && b.SyncedBlock.SyncedFrom != nil {
		return nil
	}
	if len(b.Children) > 0 {
		return b.Children
	}
	switch b.Type {
	case TypeParagraph, TypeBulletedListItem, TypeNumberedListItem, TypeToggle, TypeQuote:
		if p := b.textPayload(); p != nil {
			return p.Children
		}
	case TypeHeading1, TypeHeading2, TypeHeading3:
		if h := b.Heading(); h != nil {
			return h.Children
		}
	case TypeToDo:
		if b.ToDo != nil {
			return b.ToDo.Children
		}
	case TypeCallout:
		if b.Callout != nil {
			return b.Callout.Children
		}
	case TypeTable:
		if b.Table != nil {
			return b.Table.Children
		}
	case TypeColumnList:
		if b.ColumnList != nil {
			return b.ColumnList.Children
		}
	case TypeColumn:
		if b.Column != nil {
			return b.Column.Children
		}
	case TypeSyncedBlock:
		if b.SyncedBlock != nil {
			return b.SyncedBlock.Children
		}
	}
	return nil
}

// SetChildren stores children in the payload of a creation block. It
// reports false for types that cannot hold children.
func (b *Block) SetChildren(children []Block) bool {
	switch b.Type {
	case TypeParagraph, TypeBulletedListItem, TypeNumberedListItem, TypeToggle, TypeQuote:
		if p := b.textPayload(); p != nil {
			p.Children = children
			return true
		}
	case TypeHeading1, TypeHeading2, TypeHeading3:
		if h := b.Heading(); h != nil {
			h.Children = children
			return true
		}
	case TypeToDo:
		if b.ToDo != nil {
			b.ToDo.Children = children
			return true
		}
	case TypeCallout:
		if b.Callout != nil {
			b.Callout.Children = children
			return true
		}
	case TypeTable:
		if b.Table != nil {
			b.Table.Children = children
			return true
		}
	case TypeColumnList:
		if b.ColumnList != nil {
			b.ColumnList.Children = children
			return true
		}
	case TypeColumn:
		if b.Column != nil {
			b.Column.Children = children
			return true
		}
	case TypeSyncedBlock:
		if b.SyncedBlock != nil && b.SyncedBlock.SyncedFrom == nil {
			b.SyncedBlock.Children = children
			return true
		}
	}
	return false
}

func (b *Block) textPayload() *TextBlock {
	switch b.Type {
	case TypeParagraph:
		return b.Paragraph
	case TypeBulletedListItem:
		return b.BulletedListItem
	case TypeNumberedListItem:
		return b.NumberedListItem
	case TypeToggle:
		return b.Toggle
	case TypeQuote:
		return b.Quote
	}
	return nil
}

// Heading returns the heading payload for heading_1/2/3 blocks
func (b *Block) Heading() *Heading {
	switch b.Type {
	case TypeHeading1:
		return b.Heading1
	case TypeHeading2:
		return b.Heading2
	case TypeHeading3:
		return b.Heading3
	}
	return nil
}

// RichText returns the primary rich text of the block, if it has one
func (b *Block) RichText() []richtext.RichText {
	if p := b.textPayload(); p != nil {
		return p.RichText
	}
	if h := b.Heading(); h != nil {
		return h.RichText
	}
	switch {
	case b.ToDo != nil:
		return b.ToDo.RichText
	case b.Callout != nil:
		return b.Callout.RichText
	case b.Code != nil:
		return b.Code.RichText
	}
	return nil
}

// FilePayload returns the payload of media blocks
func (b *Block) FilePayload() *File {
	switch b.Type {
	case TypeImage:
		return b.Image
	case TypeVideo:
		return b.Video
	case TypeAudio:
		return b.Audio
	case TypeFile:
		return b.File
	case TypePDF:
		return b.PDF
	}
	return nil
}
