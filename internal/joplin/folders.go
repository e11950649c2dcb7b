package joplin

import (
	"context"
	"net/http"

	"github.com/taigrr/joplin-cli/internal/types"
)

// FolderService maps the /folders routes.
type FolderService struct {
	c *Client
}

func (s *FolderService) List(ctx context.Context, p types.ListParams) (types.Page[types.Folder], error) {
	return list[types.Folder](ctx, s.c, "/folders", p)
}

func (s *FolderService) Get(ctx context.Context, id string, fields ...string) (types.Folder, error) {
	var folder types.Folder
	err := s.c.getJSON(ctx, "/folders/"+escape(id), fieldsQuery(fields), &folder)
	return folder, err
}

func (s *FolderService) Create(ctx context.Context, p types.FolderCreateParams) (types.Folder, error) {
	if err := s.c.check(p); err != nil {
		return types.Folder{}, err
	}
	var folder types.Folder
	err := s.c.sendJSON(ctx, http.MethodPost, "/folders", p, &folder)
	return folder, err
}

func (s *FolderService) Update(ctx context.Context, p types.FolderUpdateParams) (types.Folder, error) {
	if err := s.c.check(p); err != nil {
		return types.Folder{}, err
	}
	var folder types.Folder
	err := s.c.sendJSON(ctx, http.MethodPut, "/folders/"+escape(p.ID), p, &folder)
	return folder, err
}

func (s *FolderService) Remove(ctx context.Context, id string) error {
	return s.c.delete(ctx, "/folders/"+escape(id))
}

// Notes lists the notes directly inside a folder.
func (s *FolderService) Notes(ctx context.Context, id string, p types.ListParams) (types.Page[types.Note], error) {
	return list[types.Note](ctx, s.c, "/folders/"+escape(id)+"/notes", p)
}
