package mcpserver

// CaptureFormat describes the Markdown accepted by the inbox directory and
// the capture tool.
const CaptureFormat = `# Organizer Capture Format

A capture is one Markdown file (or one capture tool call) that becomes one
record. Records live in one of two collections, ` + "`items`" + ` or ` + "`notes`" + `, and are
appended to the end of that collection.

## Structure

` + "```" + `markdown
---
title: Weekend trip            # OPTIONAL – falls back to the first "# " heading
kind: items                    # OPTIONAL – items | notes, default notes
links:                         # OPTIONAL – at most three
  - title: Train times
    url: https://example.com/trains
---

Free text body in Markdown.

- [ ] book hotel
- [ ] buy tickets
` + "```" + `

## Rules

1. **Frontmatter is optional.** When present, the ` + "`---`" + ` fences must come first.
   Invalid YAML is treated as plain body text.
2. **Links** need a well-formed ` + "`url`" + `; ` + "`title`" + ` may be empty. More than three
   links rejects the whole capture.
3. **Tasks** are unchecked checkbox lines (` + "`- [ ] text`" + `). Each becomes a task on
   the global tasks list, in file order, and the line is removed from the body.
   Checked boxes (` + "`- [x]`" + `) stay in the body.
4. **Editing** an inbox file updates the record it created. Tasks are only
   created on first import.
5. **Deleting** an inbox file leaves its record in place. Deleting the record
   leaves the file alone and the file is not imported again.
6. **Encoding** is UTF-8. Inbox file names end with ` + "`.md`" + `; hidden files are ignored.
`
