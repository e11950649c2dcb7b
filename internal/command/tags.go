package command

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/taigrr/joplin-cli/internal/joplin"
	"github.com/taigrr/joplin-cli/internal/prompt"
	"github.com/taigrr/joplin-cli/internal/types"
)

// ManageTags lets the user pick the tags of a note. The note is item when
// it is a note, otherwise the note open in the editor. Tags are attached
// before stale ones are detached; a failure leaves completed calls in
// place.
func (s *Service) ManageTags(ctx context.Context, item *types.FolderOrNote) error {
	var noteID string
	switch {
	case item != nil && item.IsNote():
		noteID = item.ID()
	case s.editor != nil:
		noteID = s.editor.ActiveNoteID()
	}
	if noteID == "" {
		return nil
	}

	current, err := joplin.All[types.Tag](ctx, func(ctx context.Context, p types.ListParams) (types.Page[types.Tag], error) {
		return s.notes.Tags(ctx, noteID, p)
	}, types.ListParams{})
	if err != nil {
		return s.fail("load note tags", err)
	}
	all, err := joplin.All[types.Tag](ctx, s.tags.List, types.ListParams{})
	if err != nil {
		return s.fail("load tags", err)
	}

	oldIDs := make([]string, len(current))
	attached := make(map[string]bool, len(current))
	for i, t := range current {
		oldIDs[i] = t.ID
		attached[t.ID] = true
	}
	items := make([]prompt.Item, len(all))
	for i, t := range all {
		items[i] = prompt.Item{Label: t.Title, Value: t.ID, Picked: attached[t.ID]}
	}

	picked, ok, err := s.prompt.Pick(ctx, items, prompt.PickOptions{
		Title:       "Please select a tag for this note",
		CanPickMany: true,
	})
	if err != nil {
		return s.promptFailed(err)
	}
	if !ok {
		return nil
	}

	add, del := diffTags(oldIDs, prompt.Values(picked))
	s.logger.Debug("manage tags", zap.String("noteID", noteID), zap.Strings("add", add), zap.Strings("delete", del))

	if err := fanOut(add, func(tagID string) error {
		return s.tags.AddNote(ctx, tagID, noteID)
	}); err != nil {
		return s.fail("add tags", err)
	}
	if err := fanOut(del, func(tagID string) error {
		return s.tags.RemoveNote(ctx, tagID, noteID)
	}); err != nil {
		return s.fail("remove tags", err)
	}
	return nil
}

// diffTags returns the ids to attach and detach to move from old to
// selected. The two lists never share an id.
func diffTags(old, selected []string) (add, del []string) {
	oldSet := make(map[string]bool, len(old))
	for _, id := range old {
		oldSet[id] = true
	}
	selSet := make(map[string]bool, len(selected))
	for _, id := range selected {
		if !oldSet[id] && !selSet[id] {
			add = append(add, id)
		}
		selSet[id] = true
	}
	seen := make(map[string]bool, len(old))
	for _, id := range old {
		if !selSet[id] && !seen[id] {
			del = append(del, id)
		}
		seen[id] = true
	}
	return add, del
}

// fanOut runs fn for every id concurrently. Every call is issued even when
// one fails; the first error is returned.
func fanOut(ids []string, fn func(id string) error) error {
	var g errgroup.Group
	for _, id := range ids {
		g.Go(func() error { return fn(id) })
	}
	return g.Wait()
}

// CreateTag asks for a title and creates the tag.
func (s *Service) CreateTag(ctx context.Context) error {
	title, err := s.prompt.Input(ctx, prompt.InputOptions{
		Placeholder: "Please enter the name of the new tag",
	})
	if err != nil {
		return s.promptFailed(err)
	}
	if title == "" {
		return nil
	}
	if _, err := s.tags.Create(ctx, types.TagCreateParams{Title: title}); err != nil {
		return s.fail("create tag", err)
	}
	s.prompt.Info(fmt.Sprintf("Create tag [%s] success", title))
	return nil
}

// RemoveTag lets the user pick a tag and deletes it.
func (s *Service) RemoveTag(ctx context.Context) error {
	all, err := joplin.All[types.Tag](ctx, s.tags.List, types.ListParams{})
	if err != nil {
		return s.fail("load tags", err)
	}
	items := make([]prompt.Item, len(all))
	for i, t := range all {
		items[i] = prompt.Item{Label: t.Title, Value: t.ID}
	}
	picked, ok, err := s.prompt.Pick(ctx, items, prompt.PickOptions{
		Title: "Please select the tag to delete",
	})
	if err != nil {
		return s.promptFailed(err)
	}
	if !ok || len(picked) == 0 {
		return nil
	}

	tag := picked[0]
	if err := s.tags.Remove(ctx, tag.Value); err != nil {
		return s.fail("delete tag", err)
	}
	s.prompt.Info(fmt.Sprintf("Remove tag [%s] success", tag.Label))
	return nil
}
