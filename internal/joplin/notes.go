package joplin

import (
	"context"
	"net/http"

	"github.com/taigrr/joplin-cli/internal/types"
)

// NoteService maps the /notes routes.
type NoteService struct {
	c *Client
}

func list[T any](ctx context.Context, c *Client, path string, p types.ListParams) (types.Page[T], error) {
	var page types.Page[T]
	if err := c.getJSON(ctx, path, listQuery(p), &page); err != nil {
		return types.Page[T]{}, err
	}
	return page, nil
}

// List returns one page of notes.
func (s *NoteService) List(ctx context.Context, p types.ListParams) (types.Page[types.Note], error) {
	return list[types.Note](ctx, s.c, "/notes", p)
}

// Get fetches a note. A missing id yields *NotFoundError.
func (s *NoteService) Get(ctx context.Context, id string, fields ...string) (types.Note, error) {
	var note types.Note
	err := s.c.getJSON(ctx, "/notes/"+escape(id), fieldsQuery(fields), &note)
	return note, err
}

// Create adds a note and returns it with its server-assigned id.
func (s *NoteService) Create(ctx context.Context, p types.NoteCreateParams) (types.Note, error) {
	if err := s.c.check(p); err != nil {
		return types.Note{}, err
	}
	var note types.Note
	err := s.c.sendJSON(ctx, http.MethodPost, "/notes", p, &note)
	return note, err
}

// Update applies the non-nil fields of p.
func (s *NoteService) Update(ctx context.Context, p types.NoteUpdateParams) (types.Note, error) {
	if err := s.c.check(p); err != nil {
		return types.Note{}, err
	}
	var note types.Note
	err := s.c.sendJSON(ctx, http.MethodPut, "/notes/"+escape(p.ID), p, &note)
	return note, err
}

// Remove deletes a note. Deleting twice fails with *NotFoundError.
func (s *NoteService) Remove(ctx context.Context, id string) error {
	return s.c.delete(ctx, "/notes/"+escape(id))
}

// Tags lists the tags attached to a note.
func (s *NoteService) Tags(ctx context.Context, id string, p types.ListParams) (types.Page[types.Tag], error) {
	return list[types.Tag](ctx, s.c, "/notes/"+escape(id)+"/tags", p)
}

// Resources lists the attachments referenced by a note.
func (s *NoteService) Resources(ctx context.Context, id string, p types.ListParams) (types.Page[types.Resource], error) {
	return list[types.Resource](ctx, s.c, "/notes/"+escape(id)+"/resources", p)
}

// ToggleTodo flips todo_completed between 0 and the current time.
func (s *NoteService) ToggleTodo(ctx context.Context, id string) error {
	note, err := s.Get(ctx, id, "id", "todo_completed")
	if err != nil {
		return err
	}
	var completed int64
	if !note.Completed() {
		completed = s.c.now().UnixMilli()
	}
	_, err = s.Update(ctx, types.NoteUpdateParams{ID: id, TodoCompleted: &completed})
	return err
}
