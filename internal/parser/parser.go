// Package parser turns Markdown capture files into organizer drafts.
//
// A capture file is optional YAML frontmatter followed by a Markdown body.
// Unchecked checkbox lines ("- [ ] text") in the body become tasks and are
// removed from the stored body.
package parser

import (
	"bytes"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/organizer/internal/models"
)

var taskRe = regexp.MustCompile(`^\s*[-*+]\s+\[ \]\s+(.+?)\s*$`)

// Frontmatter is the recognised YAML header of a capture file.
type Frontmatter struct {
	Title string        `yaml:"title"`
	Kind  string        `yaml:"kind"`
	Links []models.Link `yaml:"links"`
}

// Capture is a parsed capture file.
type Capture struct {
	Kind  models.Kind
	Draft models.Draft
}

// Parse extracts a capture from raw Markdown. A missing or unknown kind
// defaults to notes. Invalid YAML frontmatter is treated as body text.
func Parse(data []byte) *Capture {
	fm, body := splitFrontmatter(data)
	body, tasks := extractTasks(body)

	kind := models.Kind(strings.ToLower(strings.TrimSpace(fm.Kind)))
	if !kind.Valid() {
		kind = models.KindNote
	}
	return &Capture{
		Kind: kind,
		Draft: models.Draft{
			Title: deriveTitle(fm, body),
			Body:  body,
			Links: fm.Links,
			Tasks: tasks,
		},
	}
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body. If no frontmatter is found the entire content is body.
func splitFrontmatter(data []byte) (Frontmatter, string) {
	const delim = "---"
	var fm Frontmatter
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return fm, string(data)
	}
	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return fm, string(data)
	}

	block := rest[:idx]
	body := strings.TrimLeft(string(rest[idx+1+len(delim):]), "\n\r")
	if err := yaml.Unmarshal(block, &fm); err != nil {
		return Frontmatter{}, string(data)
	}
	return fm, body
}

// extractTasks pulls unchecked checkbox lines out of body.
func extractTasks(body string) (string, []string) {
	var (
		kept  []string
		tasks []string
	)
	for _, line := range strings.Split(body, "\n") {
		if m := taskRe.FindStringSubmatch(line); m != nil {
			tasks = append(tasks, m[1])
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n"), tasks
}

// deriveTitle returns the frontmatter title if present, otherwise the first
// H1 heading, otherwise empty string.
func deriveTitle(fm Frontmatter, body string) string {
	if t := strings.TrimSpace(fm.Title); t != "" {
		return t
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}
