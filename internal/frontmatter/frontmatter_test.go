package frontmatter

import (
	"errors"
	"strings"
	"testing"

	"github.com/taigrr/joplin-cli/internal/types"
)

func TestHandler_RoundTrip(t *testing.T) {
	h := New()
	note := types.Note{
		ID:       "0123456789abcdef0123456789abcdef",
		Title:    "Shopping: list",
		ParentID: "f1",
		IsTodo:   1,
		Body:     "# Shopping\n\n- milk\n",
	}

	content, err := h.Stringify(h.FromNote(note))
	if err != nil {
		t.Fatalf("Stringify() error = %v", err)
	}
	if !strings.HasPrefix(content, "---\n") {
		t.Fatalf("content should start with a delimiter: %q", content)
	}

	doc, err := h.Parse(content)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if doc.Header.ID != note.ID || doc.Header.Title != note.Title || doc.Header.ParentID != note.ParentID {
		t.Errorf("header = %+v", doc.Header)
	}
	if doc.Header.IsTodo != 1 {
		t.Errorf("IsTodo = %d, want 1", doc.Header.IsTodo)
	}
	if doc.Body != note.Body {
		t.Errorf("Body = %q, want %q", doc.Body, note.Body)
	}
}

func TestHandler_Parse(t *testing.T) {
	h := New()

	tests := []struct {
		name     string
		content  string
		wantID   string
		wantBody string
		wantErr  error
	}{
		{
			name:     "header and body",
			content:  "---\nid: abc\ntitle: T\n---\nbody text",
			wantID:   "abc",
			wantBody: "body text",
		},
		{
			name:     "crlf line endings",
			content:  "---\r\nid: abc\r\ntitle: T\r\n---\r\nbody",
			wantID:   "abc",
			wantBody: "body",
		},
		{
			name:    "header only",
			content: "---\nid: abc\n---",
			wantID:  "abc",
		},
		{
			name:     "no header",
			content:  "just text",
			wantBody: "just text",
			wantErr:  ErrNoHeader,
		},
		{
			name:     "unterminated header",
			content:  "---\nid: abc\nbody",
			wantBody: "---\nid: abc\nbody",
			wantErr:  ErrNoHeader,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := h.Parse(tt.content)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Parse() error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if doc.Header.ID != tt.wantID {
				t.Errorf("ID = %q, want %q", doc.Header.ID, tt.wantID)
			}
			if doc.Body != tt.wantBody {
				t.Errorf("Body = %q, want %q", doc.Body, tt.wantBody)
			}
		})
	}
}

func TestHandler_ParseInvalidYAML(t *testing.T) {
	_, err := New().Parse("---\nid: [unclosed\n---\nbody")
	if err == nil {
		t.Fatal("expected error for invalid yaml")
	}
	if errors.Is(err, ErrNoHeader) {
		t.Errorf("error should describe invalid yaml, got %v", err)
	}
}

func TestHandler_Changes(t *testing.T) {
	h := New()
	prev := types.Note{ID: "n1", Title: "Old", Body: "old body"}

	t.Run("unchanged", func(t *testing.T) {
		_, ok := h.Changes(prev, h.FromNote(prev))
		if ok {
			t.Error("expected no changes")
		}
	})

	t.Run("title and body", func(t *testing.T) {
		doc := h.FromNote(prev)
		doc.Header.Title = "New"
		doc.Body = "new body"
		params, ok := h.Changes(prev, doc)
		if !ok {
			t.Fatal("expected changes")
		}
		if params.ID != "n1" || params.Title == nil || *params.Title != "New" {
			t.Errorf("params = %+v", params)
		}
		if params.Body == nil || *params.Body != "new body" {
			t.Errorf("Body = %v", params.Body)
		}
	})

	t.Run("blank title ignored", func(t *testing.T) {
		doc := h.FromNote(prev)
		doc.Header.Title = "  "
		params, ok := h.Changes(prev, doc)
		if ok || params.Title != nil {
			t.Errorf("blank title should not produce an update: %+v", params)
		}
	})
}
