// Package frontmatter reads and writes the note files opened for editing:
// a YAML header carrying the note's identity followed by the markdown body.
package frontmatter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/taigrr/joplin-cli/internal/types"
	"gopkg.in/yaml.v3"
)

// ErrNoHeader is returned when a file has no frontmatter block.
var ErrNoHeader = errors.New("note file has no frontmatter header")

type (
	// Header is the YAML block at the top of a note file.
	Header struct {
		ID            string `yaml:"id"`
		Title         string `yaml:"title"`
		ParentID      string `yaml:"parent_id,omitempty"`
		IsTodo        int    `yaml:"is_todo,omitempty"`
		TodoCompleted int64  `yaml:"todo_completed,omitempty"`
	}

	// Document is a parsed note file.
	Document struct {
		Header Header
		Body   string
	}
)

// Handler parses and renders note files.
type Handler struct{}

// New creates a Handler.
func New() *Handler {
	return &Handler{}
}

// FromNote builds the document written to disk for a note.
func (h *Handler) FromNote(note types.Note) Document {
	return Document{
		Header: Header{
			ID:            note.ID,
			Title:         note.Title,
			ParentID:      note.ParentID,
			IsTodo:        note.IsTodo,
			TodoCompleted: note.TodoCompleted,
		},
		Body: note.Body,
	}
}

// Parse splits content into header and body.
func (h *Handler) Parse(content string) (Document, error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(content, "---\n") {
		return Document{Body: content}, ErrNoHeader
	}

	var yamlContent, body string
	endIndex := strings.Index(content[4:], "\n---\n")
	switch {
	case endIndex != -1:
		yamlContent = content[4 : endIndex+4]
		body = content[endIndex+4+5:]
	case strings.HasSuffix(content, "\n---"):
		yamlContent = content[4 : len(content)-4]
	default:
		return Document{Body: content}, ErrNoHeader
	}

	var header Header
	if err := yaml.Unmarshal([]byte(yamlContent), &header); err != nil {
		return Document{Body: content}, fmt.Errorf("invalid frontmatter: %w", err)
	}
	return Document{Header: header, Body: body}, nil
}

// Stringify renders a document back to file content.
func (h *Handler) Stringify(doc Document) (string, error) {
	yamlBytes, err := yaml.Marshal(doc.Header)
	if err != nil {
		return "", fmt.Errorf("failed to stringify frontmatter: %w", err)
	}
	return "---\n" + string(yamlBytes) + "---\n" + doc.Body, nil
}

// Changes compares an edited document with the note it was created from
// and returns the update to send. ok is false when nothing changed.
func (h *Handler) Changes(prev types.Note, doc Document) (types.NoteUpdateParams, bool) {
	params := types.NoteUpdateParams{ID: prev.ID}
	changed := false

	if title := strings.TrimSpace(doc.Header.Title); title != "" && title != prev.Title {
		params.Title = &title
		changed = true
	}
	if doc.Body != prev.Body {
		body := doc.Body
		params.Body = &body
		changed = true
	}
	return params, changed
}
