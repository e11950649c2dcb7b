package command

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/taigrr/joplin-cli/internal/editor"
	"github.com/taigrr/joplin-cli/internal/prompt"
	"github.com/taigrr/joplin-cli/internal/types"
	"github.com/taigrr/joplin-cli/internal/uri"
)

const (
	confirmLabel = "confirm"
	cancelLabel  = "cancel"
)

var revealFields = []string{"id", "parent_id", "title", "is_todo", "todo_completed"}

// Create asks for a name and creates a folder or note. The parent is the
// folder itself, the parent of a note, or the root when nothing is
// selected. A created note is opened for editing.
func (s *Service) Create(ctx context.Context, kind types.ModelType, item *types.FolderOrNote) error {
	if kind != types.TypeFolder && kind != types.TypeNote {
		return fmt.Errorf("cannot create %s", kind)
	}
	var parentID string
	if target, ok := s.target(item); ok {
		parentID = target.ContainerID()
	}
	s.logger.Debug("create", zap.Stringer("type", kind), zap.String("parentID", parentID))

	noun := "note"
	if kind == types.TypeFolder {
		noun = "folder"
	}
	title, err := s.prompt.Input(ctx, prompt.InputOptions{
		Placeholder: fmt.Sprintf("Please enter what you want to create %s name", noun),
	})
	if err != nil {
		return s.promptFailed(err)
	}
	if title == "" {
		return nil
	}

	var id string
	if kind == types.TypeFolder {
		folder, err := s.folders.Create(ctx, types.FolderCreateParams{Title: title, ParentID: parentID})
		if err != nil {
			return s.fail("create folder", err)
		}
		id = folder.ID
	} else {
		note, err := s.notes.Create(ctx, types.NoteCreateParams{Title: title, ParentID: parentID})
		if err != nil {
			return s.fail("create note", err)
		}
		id = note.ID
	}
	s.logger.Info("created", zap.Stringer("type", kind), zap.String("id", id))

	if err := s.refresh(ctx); err != nil {
		return err
	}
	if kind == types.TypeNote && s.editor != nil {
		if _, err := s.editor.OpenAndWatch(ctx, id); err != nil {
			return s.fail("open note", err)
		}
	}
	return nil
}

// Remove deletes a folder or note, asking first when DeleteConfirm is on.
func (s *Service) Remove(ctx context.Context, item *types.FolderOrNote) error {
	target, ok := s.target(item)
	if !ok {
		return nil
	}

	if s.settings.DeleteConfirm {
		picked, ok, err := s.prompt.Pick(ctx, []prompt.Item{
			{Label: confirmLabel, Value: confirmLabel},
			{Label: cancelLabel, Value: cancelLabel},
		}, prompt.PickOptions{
			Title: fmt.Sprintf("delete or not %s [%s]", target.Noun(), target.Title()),
		})
		if err != nil {
			return s.promptFailed(err)
		}
		if !ok || len(picked) == 0 || picked[0].Value != confirmLabel {
			return nil
		}
	}

	var err error
	if target.IsFolder() {
		err = s.folders.Remove(ctx, target.ID())
	} else {
		err = s.notes.Remove(ctx, target.ID())
	}
	if err != nil {
		return s.fail("delete "+target.Noun(), err)
	}
	s.logger.Info("removed", zap.Stringer("type", target.Kind()), zap.String("id", target.ID()))
	return s.refresh(ctx)
}

// Rename asks for a new title and updates it.
func (s *Service) Rename(ctx context.Context, item *types.FolderOrNote) error {
	target, ok := s.target(item)
	if !ok {
		return nil
	}
	title, err := s.prompt.Input(ctx, prompt.InputOptions{
		Placeholder: "Please enter a new name",
		Value:       target.Title(),
	})
	if err != nil {
		return s.promptFailed(err)
	}
	if title == "" {
		return nil
	}

	if target.IsFolder() {
		_, err = s.folders.Update(ctx, types.FolderUpdateParams{ID: target.ID(), Title: &title})
	} else {
		_, err = s.notes.Update(ctx, types.NoteUpdateParams{ID: target.ID(), Title: &title})
	}
	if err != nil {
		return s.fail("rename "+target.Noun(), err)
	}
	return s.refresh(ctx)
}

// CopyLink puts a markdown link to the item on the clipboard.
func (s *Service) CopyLink(ctx context.Context, item *types.FolderOrNote) error {
	target, ok := s.target(item)
	if !ok {
		return nil
	}
	link := uri.MarkdownLink(uri.TrimTitleStart(target.Title()), target.ID())
	if err := s.clipboard.WriteText(link); err != nil {
		return s.fail("copy link", err)
	}
	s.logger.Debug("link copied", zap.String("link", link))
	return nil
}

// ToggleTodoState flips a todo between open and done.
func (s *Service) ToggleTodoState(ctx context.Context, item *types.FolderOrNote) error {
	target, ok := s.target(item)
	if !ok || !target.IsNote() {
		return nil
	}
	if err := s.notes.ToggleTodo(ctx, target.ID()); err != nil {
		return s.fail("toggle todo", err)
	}
	return s.refresh(ctx)
}

// OpenNote opens a note for editing and reveals it in the tree.
func (s *Service) OpenNote(ctx context.Context, item *types.FolderOrNote) error {
	target, ok := s.target(item)
	if !ok || !target.IsNote() {
		return nil
	}
	if _, err := s.editor.OpenAndWatch(ctx, target.ID()); err != nil {
		return s.fail("open note", err)
	}
	if s.tree != nil {
		if err := s.tree.Reveal(ctx, target); err != nil {
			s.logger.Warn("reveal failed", zap.String("id", target.ID()), zap.Error(err))
		}
	}
	return nil
}

// OnActiveNoteChanged reveals the note behind fileName when the tree is
// visible. Files that are not note files are ignored.
func (s *Service) OnActiveNoteChanged(ctx context.Context, fileName string) error {
	if s.tree == nil || !s.tree.Visible() {
		return nil
	}
	id, ok := editor.NoteIDFromFileName(fileName)
	if !ok {
		return nil
	}
	note, err := s.notes.Get(ctx, id, revealFields...)
	if err != nil {
		s.logger.Warn("failed to load active note", zap.String("id", id), zap.Error(err))
		return err
	}
	return s.tree.Reveal(ctx, types.NewNoteItem(note))
}
