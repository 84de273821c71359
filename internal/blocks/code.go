package blocks

import (
	"regexp"
	"strings"

	"github.com/gerunddev/notionbridge/internal/richtext"
)

var (
	codeFencePattern   = regexp.MustCompile("^```([^`]*?)\\s*$")
	codeCaptionPattern = regexp.MustCompile(`^Caption:\s*(.*)$`)
)

// CodeFence is the opening and closing marker of a code block
const CodeFence = "```"

// PlainTextLanguage is the language used when none or an unknown one is given
const PlainTextLanguage = "plain text"

var codeLanguages = map[string]bool{
	"abap": true, "agda": true, "arduino": true, "ascii art": true, "assembly": true,
	"bash": true, "basic": true, "bnf": true, "c": true, "c#": true, "c++": true,
	"clojure": true, "coffeescript": true, "coq": true, "css": true, "dart": true,
	"dhall": true, "diff": true, "docker": true, "ebnf": true, "elixir": true,
	"elm": true, "erlang": true, "f#": true, "flow": true, "fortran": true,
	"gherkin": true, "glsl": true, "go": true, "graphql": true, "groovy": true,
	"haskell": true, "hcl": true, "html": true, "idris": true, "java": true,
	"javascript": true, "json": true, "julia": true, "kotlin": true, "latex": true,
	"less": true, "lisp": true, "livescript": true, "llvm ir": true, "lua": true,
	"makefile": true, "markdown": true, "markup": true, "matlab": true,
	"mathematica": true, "mermaid": true, "nix": true, "notion formula": true,
	"objective-c": true, "ocaml": true, "pascal": true, "perl": true, "php": true,
	"plain text": true, "powershell": true, "prolog": true, "protobuf": true,
	"purescript": true, "python": true, "r": true, "racket": true, "reason": true,
	"ruby": true, "rust": true, "sass": true, "scala": true, "scheme": true,
	"scss": true, "shell": true, "smalltalk": true, "solidity": true, "sql": true,
	"swift": true, "toml": true, "typescript": true, "vb.net": true, "verilog": true,
	"vhdl": true, "visual basic": true, "webassembly": true, "xml": true, "yaml": true,
}

var languageAliases = map[string]string{
	"golang": "go",
	"js":     "javascript",
	"ts":     "typescript",
	"py":     "python",
	"sh":     "shell",
	"zsh":    "shell",
	"yml":    "yaml",
	"rb":     "ruby",
	"rs":     "rust",
	"cpp":    "c++",
	"csharp": "c#",
	"tex":    "latex",
	"text":   PlainTextLanguage,
	"txt":    PlainTextLanguage,
}

// NormalizeLanguage maps a fence language to a Notion code language
func NormalizeLanguage(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if alias, ok := languageAliases[lang]; ok {
		return alias
	}
	if codeLanguages[lang] {
		return lang
	}
	return PlainTextLanguage
}

// IsCodeFence reports whether line opens or closes a code block
func IsCodeFence(line string) bool {
	return codeFencePattern.MatchString(strings.TrimSpace(line))
}

// CaptionOf returns the caption of a Caption: line
func CaptionOf(line string) (string, bool) {
	m := codeCaptionPattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// CodeElement handles fenced code blocks with an optional caption line
type CodeElement struct{ base }

func NewCode(f *richtext.Formatter) *CodeElement {
	return &CodeElement{base{name: "code", format: f}}
}

func (e *CodeElement) IsMultiline() bool { return true }

func (e *CodeElement) MatchesMarkdownLine(line string) bool {
	return IsCodeFence(line)
}

// MarkdownToBlock takes the whole fenced text, from the opening fence to the
// closing fence and an optional Caption: line. A missing closing fence
// takes the remaining lines as content.
func (e *CodeElement) MarkdownToBlock(text string) []Block {
	lines := strings.Split(text, "\n")
	if len(lines) == 0 {
		return nil
	}
	open := codeFencePattern.FindStringSubmatch(strings.TrimSpace(lines[0]))
	if open == nil {
		return nil
	}

	var content []string
	caption := ""
	rest := lines[1:]
	for i, l := range rest {
		if strings.TrimSpace(l) == CodeFence {
			if i+1 < len(rest) {
				if c, ok := CaptionOf(rest[i+1]); ok {
					caption = c
				}
			}
			break
		}
		content = append(content, l)
	}

	body := strings.Join(content, "\n")
	rt := []richtext.RichText{}
	if body != "" {
		rt = append(rt, richtext.NewText(body))
	}
	captionRT := parseCaption(e.format, caption)
	if captionRT == nil {
		captionRT = []richtext.RichText{}
	}

	b := New(TypeCode)
	b.Code = &Code{
		RichText: rt,
		Language: NormalizeLanguage(strings.TrimSpace(open[1])),
		Caption:  captionRT,
	}
	return []Block{b}
}

func (e *CodeElement) MatchesBlock(b *Block) bool {
	return b.Type == TypeCode && b.Code != nil
}

func (e *CodeElement) BlockToMarkdown(b *Block) (string, bool) {
	if !e.MatchesBlock(b) {
		return "", false
	}
	lang := b.Code.Language
	if lang == PlainTextLanguage {
		lang = ""
	}
	var sb strings.Builder
	sb.WriteString(CodeFence + lang + "\n")
	if body := richtext.PlainText(b.Code.RichText); body != "" {
		sb.WriteString(body + "\n")
	}
	sb.WriteString(CodeFence)
	if caption := e.format.Render(b.Code.Caption); caption != "" {
		sb.WriteString("\nCaption: " + caption)
	}
	return sb.String(), true
}
