package parser

import (
	"testing"

	"github.com/starford/organizer/internal/models"
)

func TestParse_FrontmatterAndBody(t *testing.T) {
	input := []byte("---\ntitle: Trip\nkind: items\nlinks:\n  - title: Map\n    url: https://maps.example.com\n---\nPack light.\n")
	c := Parse(input)
	if c.Kind != models.KindItem {
		t.Errorf("kind = %q, want items", c.Kind)
	}
	if c.Draft.Title != "Trip" {
		t.Errorf("title = %q, want Trip", c.Draft.Title)
	}
	if len(c.Draft.Links) != 1 || c.Draft.Links[0].URL != "https://maps.example.com" || c.Draft.Links[0].Title != "Map" {
		t.Errorf("links = %+v", c.Draft.Links)
	}
	if c.Draft.Body != "Pack light.\n" {
		t.Errorf("body = %q", c.Draft.Body)
	}
}

func TestParse_NoFrontmatter(t *testing.T) {
	c := Parse([]byte("# Just a heading\nSome text.\n"))
	if c.Kind != models.KindNote {
		t.Errorf("kind = %q, want notes", c.Kind)
	}
	if c.Draft.Title != "Just a heading" {
		t.Errorf("title = %q, want %q", c.Draft.Title, "Just a heading")
	}
}

func TestParse_UnknownKindDefaultsToNotes(t *testing.T) {
	c := Parse([]byte("---\nkind: Widgets\n---\nx\n"))
	if c.Kind != models.KindNote {
		t.Errorf("kind = %q, want notes", c.Kind)
	}
	c = Parse([]byte("---\nkind: ITEMS\n---\nx\n"))
	if c.Kind != models.KindItem {
		t.Errorf("kind = %q, want items", c.Kind)
	}
}

func TestParse_InvalidYAMLFallback(t *testing.T) {
	input := "---\n: invalid: yaml: {{{\n---\nBody\n"
	c := Parse([]byte(input))
	if c.Draft.Title != "" || c.Draft.Links != nil {
		t.Errorf("expected empty frontmatter fields, got %+v", c.Draft)
	}
	if c.Draft.Body != input {
		t.Errorf("body = %q, want whole input", c.Draft.Body)
	}
}

func TestParse_UnclosedFrontmatter(t *testing.T) {
	input := "---\ntitle: x\nno closing delimiter"
	if c := Parse([]byte(input)); c.Draft.Body != input {
		t.Errorf("body = %q", c.Draft.Body)
	}
}

func TestExtractTasks(t *testing.T) {
	body := "Shopping\n- [ ] milk\n- [x] bread\n  * [ ]   eggs  \n- [ ]\nend"
	rest, tasks := extractTasks(body)
	if len(tasks) != 2 || tasks[0] != "milk" || tasks[1] != "eggs" {
		t.Errorf("tasks = %q", tasks)
	}
	if rest != "Shopping\n- [x] bread\n- [ ]\nend" {
		t.Errorf("rest = %q", rest)
	}
}
