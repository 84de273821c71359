package convert

import (
	"unicode/utf16"

	"github.com/gerunddev/notionbridge/internal/blocks"
	"github.com/gerunddev/notionbridge/internal/richtext"
)

// MaxTextLength is the most UTF-16 code units Notion accepts in the content
// of one rich text object
const MaxTextLength = 2000

// limitTextLength splits text runs longer than limit into consecutive runs
// with the same annotations and link. It walks every rich text field of
// the blocks and their children.
func limitTextLength(bs []blocks.Block, limit int) {
	for i := range bs {
		limitBlock(&bs[i], limit)
	}
}

func limitBlock(b *blocks.Block, limit int) {
	switch {
	case b.Code != nil:
		b.Code.RichText = splitRuns(b.Code.RichText, limit)
		b.Code.Caption = splitRuns(b.Code.Caption, limit)
	case b.TableRow != nil:
		for i, cell := range b.TableRow.Cells {
			b.TableRow.Cells[i] = splitRuns(cell, limit)
		}
	case b.Bookmark != nil:
		b.Bookmark.Caption = splitRuns(b.Bookmark.Caption, limit)
	case b.Embed != nil:
		b.Embed.Caption = splitRuns(b.Embed.Caption, limit)
	case b.FilePayload() != nil:
		f := b.FilePayload()
		f.Caption = splitRuns(f.Caption, limit)
	default:
		setRichText(b, splitRuns(b.RichText(), limit))
	}

	children := b.ChildBlocks()
	limitTextLength(children, limit)
}

func setRichText(b *blocks.Block, runs []richtext.RichText) {
	if runs == nil {
		return
	}
	if h := b.Heading(); h != nil {
		h.RichText = runs
		return
	}
	switch b.Type {
	case blocks.TypeParagraph:
		b.Paragraph.RichText = runs
	case blocks.TypeBulletedListItem:
		b.BulletedListItem.RichText = runs
	case blocks.TypeNumberedListItem:
		b.NumberedListItem.RichText = runs
	case blocks.TypeToggle:
		b.Toggle.RichText = runs
	case blocks.TypeQuote:
		b.Quote.RichText = runs
	case blocks.TypeToDo:
		b.ToDo.RichText = runs
	case blocks.TypeCallout:
		b.Callout.RichText = runs
	}
}

// splitRuns returns runs unchanged when nothing is over limit
func splitRuns(runs []richtext.RichText, limit int) []richtext.RichText {
	over := false
	for _, r := range runs {
		if r.Type == richtext.TypeText && r.Text != nil && textLength(r.Text.Content) > limit {
			over = true
			break
		}
	}
	if !over {
		return runs
	}

	out := make([]richtext.RichText, 0, len(runs)+1)
	for _, r := range runs {
		if r.Type != richtext.TypeText || r.Text == nil || textLength(r.Text.Content) <= limit {
			out = append(out, r)
			continue
		}
		for _, chunk := range chunkText(r.Text.Content, limit) {
			part := r
			text := *r.Text
			text.Content = chunk
			part.Text = &text
			part.PlainText = chunk
			if r.Annotations != nil {
				a := *r.Annotations
				part.Annotations = &a
			}
			out = append(out, part)
		}
	}
	return out
}

// chunkText cuts s on rune boundaries into pieces of at most limit UTF-16
// code units
func chunkText(s string, limit int) []string {
	var chunks []string
	start, size := 0, 0
	for i, r := range s {
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		if size+n > limit {
			chunks = append(chunks, s[start:i])
			start, size = i, 0
		}
		size += n
	}
	return append(chunks, s[start:])
}

func textLength(s string) int {
	n := 0
	for _, r := range s {
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++
		}
	}
	return n
}
