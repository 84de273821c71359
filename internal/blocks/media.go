package blocks

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/gerunddev/notionbridge/internal/richtext"
)

// Media handles the [tag](url "caption") syntax shared by image, video,
// audio, file and pdf blocks
type Media struct {
	base
	tags      []string
	blockType Type
	pattern   *regexp.Regexp
	accept    func(u string) bool
	normalize func(u string) string
}

func newMedia(f *richtext.Formatter, name string, t Type, tags ...string) *Media {
	return &Media{
		base:      base{name: name, format: f},
		tags:      tags,
		blockType: t,
		pattern:   regexp.MustCompile(`^\[(?:` + strings.Join(tags, "|") + `)\]\((https?://[^\s"]+)(?:\s+"([^"]+)")?\)$`),
	}
}

func NewImage(f *richtext.Formatter) *Media {
	return newMedia(f, "image", TypeImage, "image")
}

func NewVideo(f *richtext.Formatter) *Media {
	m := newMedia(f, "video", TypeVideo, "video")
	m.normalize = normalizeYouTube
	return m
}

var audioExtensions = map[string]bool{".mp3": true, ".wav": true, ".ogg": true, ".oga": true, ".m4a": true}

func NewAudio(f *richtext.Formatter) *Media {
	m := newMedia(f, "audio", TypeAudio, "audio")
	m.accept = func(u string) bool {
		parsed, err := url.Parse(u)
		if err != nil {
			return false
		}
		return audioExtensions[strings.ToLower(path.Ext(parsed.Path))]
	}
	return m
}

// NewFile handles [file](...) and its [document](...) alias
func NewFile(f *richtext.Formatter) *Media {
	return newMedia(f, "file", TypeFile, "file", "document")
}

func NewPDF(f *richtext.Formatter) *Media {
	return newMedia(f, "pdf", TypePDF, "pdf")
}

func (e *Media) MatchesMarkdownLine(line string) bool {
	return e.pattern.MatchString(strings.TrimSpace(line))
}

func (e *Media) MarkdownToBlock(text string) []Block {
	m := e.pattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return nil
	}
	u := m[1]
	if e.accept != nil && !e.accept(u) {
		return nil
	}
	if e.normalize != nil {
		u = e.normalize(u)
	}
	payload := &File{
		Type:     "external",
		External: &ExternalFile{URL: u},
		Caption:  parseCaption(e.format, m[2]),
	}
	b := New(e.blockType)
	switch e.blockType {
	case TypeImage:
		b.Image = payload
	case TypeVideo:
		b.Video = payload
	case TypeAudio:
		b.Audio = payload
	case TypeFile:
		b.File = payload
	case TypePDF:
		b.PDF = payload
	}
	return []Block{b, EmptyParagraph()}
}

func (e *Media) MatchesBlock(b *Block) bool {
	return b.Type == e.blockType && b.FilePayload() != nil
}

func (e *Media) BlockToMarkdown(b *Block) (string, bool) {
	if !e.MatchesBlock(b) {
		return "", false
	}
	f := b.FilePayload()
	u := f.URL()
	if u == "" {
		return "", false
	}
	return "[" + e.tags[0] + "](" + u + quotedCaption(e.format, f.Caption) + ")", true
}

var youTubePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtube\.com/watch\?v=([\w-]{11})`),
	regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtu\.be/([\w-]{11})`),
}

func normalizeYouTube(u string) string {
	for _, p := range youTubePatterns {
		if m := p.FindStringSubmatch(u); m != nil {
			return "https://www.youtube.com/watch?v=" + m[1]
		}
	}
	return u
}

var bookmarkPattern = regexp.MustCompile(`^\[bookmark\]\((https?://[^\s"]+)(?:\s+"([^"]+)")?(?:\s+"([^"]+)")?\)$`)

// bookmarkSeparator joins title and description in a bookmark caption
const bookmarkSeparator = " – "

type BookmarkElement struct{ base }

func NewBookmark(f *richtext.Formatter) *BookmarkElement {
	return &BookmarkElement{base{name: "bookmark", format: f}}
}

func (e *BookmarkElement) MatchesMarkdownLine(line string) bool {
	return bookmarkPattern.MatchString(strings.TrimSpace(line))
}

func (e *BookmarkElement) MarkdownToBlock(text string) []Block {
	m := bookmarkPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return nil
	}
	var parts []string
	for _, p := range m[2:] {
		if p != "" {
			parts = append(parts, p)
		}
	}
	b := New(TypeBookmark)
	b.Bookmark = &Link{URL: m[1], Caption: parseCaption(e.format, strings.Join(parts, bookmarkSeparator))}
	return []Block{b}
}

func (e *BookmarkElement) MatchesBlock(b *Block) bool {
	return b.Type == TypeBookmark && b.Bookmark != nil
}

func (e *BookmarkElement) BlockToMarkdown(b *Block) (string, bool) {
	if !e.MatchesBlock(b) || b.Bookmark.URL == "" {
		return "", false
	}
	caption := e.format.Render(b.Bookmark.Caption)
	if caption == "" {
		return "[bookmark](" + b.Bookmark.URL + ")", true
	}
	if title, desc, ok := strings.Cut(caption, bookmarkSeparator); ok {
		return `[bookmark](` + b.Bookmark.URL + ` "` + strings.TrimSpace(title) + `" "` + strings.TrimSpace(desc) + `")`, true
	}
	return `[bookmark](` + b.Bookmark.URL + ` "` + caption + `")`, true
}

var embedPattern = regexp.MustCompile(`^\[embed\]\((https?://[^\s"]+)(?:\s+"([^"]+)")?\)$`)

type EmbedElement struct{ base }

func NewEmbed(f *richtext.Formatter) *EmbedElement {
	return &EmbedElement{base{name: "embed", format: f}}
}

func (e *EmbedElement) MatchesMarkdownLine(line string) bool {
	return embedPattern.MatchString(strings.TrimSpace(line))
}

func (e *EmbedElement) MarkdownToBlock(text string) []Block {
	m := embedPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return nil
	}
	b := New(TypeEmbed)
	b.Embed = &Link{URL: m[1], Caption: parseCaption(e.format, m[2])}
	return []Block{b}
}

func (e *EmbedElement) MatchesBlock(b *Block) bool {
	return b.Type == TypeEmbed && b.Embed != nil
}

func (e *EmbedElement) BlockToMarkdown(b *Block) (string, bool) {
	if !e.MatchesBlock(b) || b.Embed.URL == "" {
		return "", false
	}
	return "[embed](" + b.Embed.URL + quotedCaption(e.format, b.Embed.Caption) + ")", true
}
