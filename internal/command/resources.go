package command

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taigrr/joplin-cli/internal/editor"
	"github.com/taigrr/joplin-cli/internal/joplin"
	"github.com/taigrr/joplin-cli/internal/prompt"
	"github.com/taigrr/joplin-cli/internal/types"
	"github.com/taigrr/joplin-cli/internal/uri"
)

const tempResourceDir = "tempResource"

// CreateResource asks for a file name, uploads an empty file under that
// name and links it from the active note.
func (s *Service) CreateResource(ctx context.Context) error {
	title, err := s.prompt.Input(ctx, prompt.InputOptions{
		Placeholder: "Please enter what you want to create attachment name",
	})
	if err != nil {
		return s.promptFailed(err)
	}
	if title == "" {
		return nil
	}

	// The upload keeps the file name, so each attempt gets its own dir.
	dir := filepath.Join(tempResourceDir, uuid.NewString())
	path, err := s.storage.CreateEmptyFile(dir, title)
	if err != nil {
		return s.fail("create attachment file", err)
	}
	defer func() {
		for _, p := range []string{path, filepath.Dir(path)} {
			if err := s.storage.Remove(p); err != nil {
				s.logger.Warn("failed to remove temp file", zap.String("path", p), zap.Error(err))
			}
		}
	}()

	res, err := s.resources.Create(ctx, types.ResourceCreateParams{Title: title, Path: path})
	if err != nil {
		return s.fail("upload attachment", err)
	}
	link := uri.ResourceLink(title, res.ID, res.IsImage())
	if err := s.editor.InsertText(ctx, link); err != nil && !errors.Is(err, editor.ErrNoActiveNote) {
		return s.fail("insert attachment link", err)
	}

	s.prompt.Info("Attachment resource created successfully")
	local, err := s.editor.OpenResource(ctx, res.ID)
	if err != nil {
		return s.fail("open attachment", err)
	}
	s.logger.Debug("attachment opened", zap.String("id", res.ID), zap.String("path", local))
	return nil
}

// RemoveResource lets the user pick attachments and deletes them
// concurrently. The success message is shown only when every delete
// succeeded.
func (s *Service) RemoveResource(ctx context.Context) error {
	all, err := joplin.All[types.Resource](ctx, s.resources.List, types.ListParams{
		OrderBy:  orderByUpdated,
		OrderDir: types.OrderDesc,
	})
	if err != nil {
		return s.fail("load attachments", err)
	}
	items := make([]prompt.Item, len(all))
	for i, r := range all {
		items[i] = prompt.Item{Label: r.Title, Value: r.ID}
	}

	picked, ok, err := s.prompt.Pick(ctx, items, prompt.PickOptions{
		Title:       "Please select the attachment resources to delete",
		CanPickMany: true,
	})
	if err != nil {
		return s.promptFailed(err)
	}
	if !ok || len(picked) == 0 {
		return nil
	}

	if err := fanOut(prompt.Values(picked), func(id string) error {
		return s.resources.Remove(ctx, id)
	}); err != nil {
		return s.fail("delete attachments", err)
	}
	s.prompt.Info(fmt.Sprintf("Attachments deleted:\n%s", strings.Join(prompt.Labels(picked), "\n")))
	return nil
}
