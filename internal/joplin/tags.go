package joplin

import (
	"context"
	"net/http"

	"github.com/taigrr/joplin-cli/internal/types"
)

// TagService maps the /tags routes.
type TagService struct {
	c *Client
}

func (s *TagService) List(ctx context.Context, p types.ListParams) (types.Page[types.Tag], error) {
	return list[types.Tag](ctx, s.c, "/tags", p)
}

func (s *TagService) Get(ctx context.Context, id string, fields ...string) (types.Tag, error) {
	var tag types.Tag
	err := s.c.getJSON(ctx, "/tags/"+escape(id), fieldsQuery(fields), &tag)
	return tag, err
}

func (s *TagService) Create(ctx context.Context, p types.TagCreateParams) (types.Tag, error) {
	if err := s.c.check(p); err != nil {
		return types.Tag{}, err
	}
	var tag types.Tag
	err := s.c.sendJSON(ctx, http.MethodPost, "/tags", p, &tag)
	return tag, err
}

func (s *TagService) Update(ctx context.Context, p types.TagUpdateParams) (types.Tag, error) {
	if err := s.c.check(p); err != nil {
		return types.Tag{}, err
	}
	var tag types.Tag
	err := s.c.sendJSON(ctx, http.MethodPut, "/tags/"+escape(p.ID), p, &tag)
	return tag, err
}

func (s *TagService) Remove(ctx context.Context, id string) error {
	return s.c.delete(ctx, "/tags/"+escape(id))
}

// AddNote attaches the tag to a note.
func (s *TagService) AddNote(ctx context.Context, tagID, noteID string) error {
	payload := struct {
		ID string `json:"id"`
	}{ID: noteID}
	return s.c.sendJSON(ctx, http.MethodPost, "/tags/"+escape(tagID)+"/notes", payload, nil)
}

// RemoveNote detaches the tag from a note.
func (s *TagService) RemoveNote(ctx context.Context, tagID, noteID string) error {
	return s.c.delete(ctx, "/tags/"+escape(tagID)+"/notes/"+escape(noteID))
}

// Notes lists the notes carrying a tag.
func (s *TagService) Notes(ctx context.Context, tagID string, p types.ListParams) (types.Page[types.Note], error) {
	return list[types.Note](ctx, s.c, "/tags/"+escape(tagID)+"/notes", p)
}
