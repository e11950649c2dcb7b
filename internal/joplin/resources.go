package joplin

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"

	"github.com/taigrr/joplin-cli/internal/types"
)

// ResourceService maps the /resources routes.
type ResourceService struct {
	c *Client
}

func (s *ResourceService) List(ctx context.Context, p types.ListParams) (types.Page[types.Resource], error) {
	return list[types.Resource](ctx, s.c, "/resources", p)
}

func (s *ResourceService) Get(ctx context.Context, id string, fields ...string) (types.Resource, error) {
	var res types.Resource
	err := s.c.getJSON(ctx, "/resources/"+escape(id), fieldsQuery(fields), &res)
	return res, err
}

// Create uploads the file at p.Path as a new resource.
func (s *ResourceService) Create(ctx context.Context, p types.ResourceCreateParams) (types.Resource, error) {
	if err := s.c.check(p); err != nil {
		return types.Resource{}, err
	}

	f, err := os.Open(p.Path)
	if err != nil {
		return types.Resource{}, errors.Wrap(err, "open resource file")
	}
	defer f.Close()

	props, err := sonic.Marshal(p)
	if err != nil {
		return types.Resource{}, errors.Wrap(err, "encode resource props")
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("data", filepath.Base(p.Path))
	if err != nil {
		return types.Resource{}, errors.Wrap(err, "create multipart file")
	}
	if _, err := io.Copy(part, f); err != nil {
		return types.Resource{}, errors.Wrap(err, "copy resource file")
	}
	if err := mw.WriteField("props", string(props)); err != nil {
		return types.Resource{}, errors.Wrap(err, "write resource props")
	}
	if err := mw.Close(); err != nil {
		return types.Resource{}, errors.Wrap(err, "close multipart body")
	}

	data, err := s.c.do(ctx, http.MethodPost, "/resources", nil, &buf, mw.FormDataContentType())
	if err != nil {
		return types.Resource{}, err
	}
	var res types.Resource
	err = decode(data, &res, "/resources")
	return res, err
}

func (s *ResourceService) Update(ctx context.Context, p types.ResourceUpdateParams) (types.Resource, error) {
	if err := s.c.check(p); err != nil {
		return types.Resource{}, err
	}
	var res types.Resource
	err := s.c.sendJSON(ctx, http.MethodPut, "/resources/"+escape(p.ID), p, &res)
	return res, err
}

func (s *ResourceService) Remove(ctx context.Context, id string) error {
	return s.c.delete(ctx, "/resources/"+escape(id))
}

// File streams the raw bytes of a resource. The caller closes it.
func (s *ResourceService) File(ctx context.Context, id string) (io.ReadCloser, error) {
	resp, err := s.c.send(ctx, http.MethodGet, "/resources/"+escape(id)+"/file", nil, nil, "")
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}
