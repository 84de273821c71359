package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gerunddev/notionbridge/internal/richtext"
)

const (
	roadmapID = "1f2e3d4c-5b6a-4978-8695-a4b3c2d1e0f9"
	adaID     = "9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d"
)

const sampleAliases = `
pages:
  Roadmap: 1f2e3d4c5b6a49788695a4b3c2d1e0f9
  Plan: 1F2E3D4C-5B6A-4978-8695-A4B3C2D1E0F9
users:
  Ada: 9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d
`

func TestParseAliases(t *testing.T) {
	a, err := ParseAliases([]byte(sampleAliases))
	if err != nil {
		t.Fatalf("ParseAliases() error = %v", err)
	}
	if a.Len() != 3 {
		t.Errorf("Len() = %d, want 3", a.Len())
	}

	tests := []struct {
		kind richtext.MentionType
		name string
		want string
		ok   bool
	}{
		{richtext.MentionPage, "Roadmap", roadmapID, true},
		{richtext.MentionPage, "roadmap", roadmapID, true},
		{richtext.MentionPage, "Plan", roadmapID, true},
		{richtext.MentionUser, "Ada", adaID, true},
		{richtext.MentionUser, "Roadmap", "", false},
		{richtext.MentionDatabase, "Tasks", "", false},
	}
	for _, tt := range tests {
		got, ok := a.NameToID(tt.kind, tt.name)
		if got != tt.want || ok != tt.ok {
			t.Errorf("NameToID(%s, %q) = %q, %v, want %q, %v", tt.kind, tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

func TestIDToNamePrefersFirstAlias(t *testing.T) {
	a, err := ParseAliases([]byte(sampleAliases))
	if err != nil {
		t.Fatalf("ParseAliases() error = %v", err)
	}

	for _, id := range []string{roadmapID, "1f2e3d4c5b6a49788695a4b3c2d1e0f9"} {
		got, ok := a.IDToName(richtext.MentionPage, id)
		if !ok || got != "Plan" {
			t.Errorf("IDToName(page, %q) = %q, %v, want %q", id, got, ok, "Plan")
		}
	}
	if _, ok := a.IDToName(richtext.MentionPage, "not-an-id"); ok {
		t.Error("IDToName() should miss for a non-ID")
	}
}

func TestParseAliasesRejectsBadIDs(t *testing.T) {
	if _, err := ParseAliases([]byte("pages:\n  Roadmap: nope\n")); err == nil {
		t.Error("ParseAliases() should reject a value that is not an ID")
	}
	if _, err := ParseAliases([]byte("pages: [")); err == nil {
		t.Error("ParseAliases() should reject malformed YAML")
	}
}

func TestLoadAliases(t *testing.T) {
	dir := t.TempDir()

	a, err := LoadAliases(filepath.Join(dir, "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadAliases(missing) error = %v", err)
	}
	if a.Len() != 0 {
		t.Errorf("missing file should give an empty table, got %d entries", a.Len())
	}

	path := filepath.Join(dir, "aliases.yaml")
	if err := os.WriteFile(path, []byte(sampleAliases), 0644); err != nil {
		t.Fatal(err)
	}
	a, err = LoadAliases(path)
	if err != nil {
		t.Fatalf("LoadAliases() error = %v", err)
	}
	if id, ok := a.NameToID(richtext.MentionUser, "Ada"); !ok || id != adaID {
		t.Errorf("NameToID(user, Ada) = %q, %v", id, ok)
	}
}

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"1f2e3d4c5b6a49788695a4b3c2d1e0f9", roadmapID, true},
		{" " + roadmapID + " ", roadmapID, true},
		{"1F2E3D4C-5B6A-4978-8695-A4B3C2D1E0F9", roadmapID, true},
		{"urn:uuid:" + roadmapID, "", false},
		{"Roadmap", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizeID(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("NormalizeID(%q) = %q, %v, want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

type fixed map[string]string

func (f fixed) NameToID(_ richtext.MentionType, name string) (string, bool) {
	id, ok := f[name]
	return id, ok
}

func (f fixed) IDToName(_ richtext.MentionType, id string) (string, bool) {
	for name, v := range f {
		if v == id {
			return name, true
		}
	}
	return "", false
}

func TestChainOrder(t *testing.T) {
	first := fixed{"Roadmap": roadmapID}
	second := fixed{"Roadmap": adaID, "Ada": adaID}
	c := Chain{nil, first, second}

	if id, _ := c.NameToID(richtext.MentionPage, "Roadmap"); id != roadmapID {
		t.Errorf("NameToID(Roadmap) = %q, want first resolver's %q", id, roadmapID)
	}
	if id, _ := c.NameToID(richtext.MentionPage, "Ada"); id != adaID {
		t.Errorf("NameToID(Ada) = %q, want %q", id, adaID)
	}
	if _, ok := c.NameToID(richtext.MentionPage, "Nobody"); ok {
		t.Error("NameToID(Nobody) should miss")
	}
	if name, _ := c.IDToName(richtext.MentionPage, roadmapID); name != "Roadmap" {
		t.Errorf("IDToName() = %q, want Roadmap", name)
	}
}

func TestFormatterUsesAliases(t *testing.T) {
	a, err := ParseAliases([]byte("pages:\n  Roadmap: " + roadmapID + "\n"))
	if err != nil {
		t.Fatal(err)
	}
	f := richtext.NewFormatter(a)

	runs := f.Parse("see @page[Roadmap]")
	var mention *richtext.Mention
	for _, r := range runs {
		if r.Mention != nil {
			mention = r.Mention
		}
	}
	if mention == nil || mention.ID() != roadmapID {
		t.Fatalf("Parse() runs = %+v, want a page mention of %s", runs, roadmapID)
	}

	if got := f.Render(runs); got != "see @page[Roadmap]" {
		t.Errorf("Render() = %q, want %q", got, "see @page[Roadmap]")
	}
}
