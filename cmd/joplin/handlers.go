package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/taigrr/joplin-cli/internal/joplin"
	"github.com/taigrr/joplin-cli/internal/tree"
	"github.com/taigrr/joplin-cli/internal/types"
	"github.com/taigrr/joplin-cli/internal/uri"
)

func itemInfo(it types.FolderOrNote) ItemInfo {
	info := ItemInfo{
		ID:       it.ID(),
		Title:    it.Title(),
		Kind:     it.Noun(),
		ParentID: it.ParentID(),
	}
	if n, ok := it.Note(); ok {
		info.Done = n.Todo() && n.Completed()
	}
	return info
}

func actionResult(msgs []string, err error) (*mcp.CallToolResult, ActionOutput, error) {
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, ActionOutput{Success: false, Messages: msgs}, err
	}
	return nil, ActionOutput{Success: true, Messages: msgs}, nil
}

func (b *bridge) handleTree(ctx context.Context, req *mcp.CallToolRequest, input TreeInput) (*mcp.CallToolResult, TreeOutput, error) {
	var out TreeOutput
	_, err := b.run(ctx, func(ctx context.Context, c *call) error {
		t := c.app.Tree
		if err := t.Refresh(ctx); err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := t.Render(&buf, tree.RenderOptions{ExpandAll: true, ShowIDs: input.ShowIDs}); err != nil {
			return err
		}
		out.Tree = buf.String()
		for _, it := range t.Items() {
			out.Items = append(out.Items, itemInfo(it))
		}
		return nil
	})
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, TreeOutput{}, err
	}
	return nil, out, nil
}

func (b *bridge) handleCreateNote(ctx context.Context, req *mcp.CallToolRequest, input CreateInput) (*mcp.CallToolResult, CreateOutput, error) {
	return b.create(ctx, types.TypeNote, input)
}

func (b *bridge) handleCreateFolder(ctx context.Context, req *mcp.CallToolRequest, input CreateInput) (*mcp.CallToolResult, CreateOutput, error) {
	return b.create(ctx, types.TypeFolder, input)
}

// create runs the create command and finds the new item by diffing the
// tree before and after.
func (b *bridge) create(ctx context.Context, kind types.ModelType, input CreateInput) (*mcp.CallToolResult, CreateOutput, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return &mcp.CallToolResult{IsError: true}, CreateOutput{}, errors.New("title is required")
	}

	var id string
	msgs, err := b.run(ctx, func(ctx context.Context, c *call) error {
		var parent *types.FolderOrNote
		if strings.TrimSpace(input.ParentID) != "" {
			var err error
			if parent, err = c.item(ctx, input.ParentID); err != nil {
				return err
			}
		}
		if err := c.app.Tree.Refresh(ctx); err != nil {
			return err
		}
		before := make(map[string]bool)
		for _, it := range c.app.Tree.Items() {
			before[it.ID()] = true
		}

		c.prompter.AnswerInput(title)
		if err := c.app.Commands.Create(ctx, kind, parent); err != nil {
			return err
		}
		for _, it := range c.app.Tree.Items() {
			if !before[it.ID()] && it.Kind() == kind && it.Title() == title {
				id = it.ID()
				break
			}
		}
		return nil
	})
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, CreateOutput{Messages: msgs}, err
	}
	return nil, CreateOutput{Success: true, ID: id, Messages: msgs}, nil
}

func (b *bridge) handleRemove(ctx context.Context, req *mcp.CallToolRequest, input RemoveInput) (*mcp.CallToolResult, ActionOutput, error) {
	if input.Confirm != "yes" {
		return &mcp.CallToolResult{IsError: true}, ActionOutput{},
			fmt.Errorf("deletion not confirmed: set confirm='yes' to proceed")
	}
	return actionResult(b.run(ctx, func(ctx context.Context, c *call) error {
		item, err := c.item(ctx, input.ID)
		if err != nil {
			return err
		}
		c.prompter.AnswerPick("confirm")
		return c.app.Commands.Remove(ctx, item)
	}))
}

func (b *bridge) handleRename(ctx context.Context, req *mcp.CallToolRequest, input RenameInput) (*mcp.CallToolResult, ActionOutput, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return &mcp.CallToolResult{IsError: true}, ActionOutput{}, errors.New("title is required")
	}
	return actionResult(b.run(ctx, func(ctx context.Context, c *call) error {
		item, err := c.item(ctx, input.ID)
		if err != nil {
			return err
		}
		c.prompter.AnswerInput(title)
		return c.app.Commands.Rename(ctx, item)
	}))
}

func (b *bridge) handleToggleTodo(ctx context.Context, req *mcp.CallToolRequest, input ItemInput) (*mcp.CallToolResult, ActionOutput, error) {
	return actionResult(b.run(ctx, func(ctx context.Context, c *call) error {
		item, err := c.item(ctx, input.ID)
		if err != nil {
			return err
		}
		if !item.IsNote() {
			return fmt.Errorf("%s is a folder", item.ID())
		}
		return c.app.Commands.ToggleTodoState(ctx, item)
	}))
}

func (b *bridge) handleSearch(ctx context.Context, req *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	var out SearchOutput
	_, err := b.run(ctx, func(ctx context.Context, c *call) error {
		items, err := c.app.Commands.LoadNotes(ctx, input.Query)
		if err != nil {
			return err
		}
		out.Results = make([]NoteRef, len(items))
		for i, it := range items {
			out.Results[i] = NoteRef{ID: it.Value, Title: it.Label}
		}
		return nil
	})
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, SearchOutput{}, err
	}
	return nil, out, nil
}

func (b *bridge) handleManageTags(ctx context.Context, req *mcp.CallToolRequest, input ManageTagsInput) (*mcp.CallToolResult, ManageTagsOutput, error) {
	var tags []string
	msgs, err := b.run(ctx, func(ctx context.Context, c *call) error {
		item, err := c.item(ctx, input.NoteID)
		if err != nil {
			return err
		}
		if !item.IsNote() {
			return fmt.Errorf("%s is a folder", item.ID())
		}
		if err := checkTags(ctx, c, input.Tags); err != nil {
			return err
		}
		if len(input.Tags) == 0 {
			c.prompter.AnswerPickNone()
		} else {
			c.prompter.AnswerPick(input.Tags...)
		}
		if err := c.app.Commands.ManageTags(ctx, item); err != nil {
			return err
		}

		current, err := joplin.All[types.Tag](ctx, func(ctx context.Context, p types.ListParams) (types.Page[types.Tag], error) {
			return c.app.Client.Notes.Tags(ctx, item.ID(), p)
		}, types.ListParams{Fields: []string{"id", "title"}})
		if err != nil {
			return err
		}
		tags = make([]string, len(current))
		for i, t := range current {
			tags[i] = t.Title
		}
		return nil
	})
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, ManageTagsOutput{Messages: msgs}, err
	}
	return nil, ManageTagsOutput{Success: true, Tags: tags, Messages: msgs}, nil
}

// checkTags fails when a wanted tag matches no existing tag, so a typo
// cannot detach every tag from the note.
func checkTags(ctx context.Context, c *call, wanted []string) error {
	all, err := joplin.All[types.Tag](ctx, c.app.Client.Tags.List, types.ListParams{Fields: []string{"id", "title"}})
	if err != nil {
		return err
	}
	known := make(map[string]bool, 2*len(all))
	for _, t := range all {
		known[t.ID] = true
		known[t.Title] = true
	}
	var unknown []string
	for _, w := range wanted {
		if !known[w] {
			unknown = append(unknown, w)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("unknown tags: %s", strings.Join(unknown, ", "))
	}
	return nil
}

func (b *bridge) handleCreateTag(ctx context.Context, req *mcp.CallToolRequest, input TagInput) (*mcp.CallToolResult, ActionOutput, error) {
	title := strings.TrimSpace(input.Tag)
	if title == "" {
		return &mcp.CallToolResult{IsError: true}, ActionOutput{}, errors.New("tag is required")
	}
	return actionResult(b.run(ctx, func(ctx context.Context, c *call) error {
		c.prompter.AnswerInput(title)
		return c.app.Commands.CreateTag(ctx)
	}))
}

func (b *bridge) handleRemoveTag(ctx context.Context, req *mcp.CallToolRequest, input TagInput) (*mcp.CallToolResult, ActionOutput, error) {
	tag := strings.TrimSpace(input.Tag)
	if tag == "" {
		return &mcp.CallToolResult{IsError: true}, ActionOutput{}, errors.New("tag is required")
	}
	return actionResult(b.run(ctx, func(ctx context.Context, c *call) error {
		c.prompter.AnswerPick(tag)
		if err := c.app.Commands.RemoveTag(ctx); err != nil {
			return err
		}
		if len(c.prompter.Infos()) == 0 {
			return fmt.Errorf("no tag matches %q", tag)
		}
		return nil
	}))
}

func (b *bridge) handleRemoveResource(ctx context.Context, req *mcp.CallToolRequest, input RemoveResourceInput) (*mcp.CallToolResult, ActionOutput, error) {
	if len(input.Resources) == 0 {
		return &mcp.CallToolResult{IsError: true}, ActionOutput{}, errors.New("resources is required")
	}
	return actionResult(b.run(ctx, func(ctx context.Context, c *call) error {
		ids, err := resolveResources(ctx, c, input.Resources)
		if err != nil {
			return err
		}
		c.prompter.AnswerPick(ids...)
		if err := c.app.Commands.RemoveResource(ctx); err != nil {
			return err
		}
		if len(c.prompter.Infos()) == 0 {
			return errors.New("no attachment matches")
		}
		return nil
	}))
}

// resolveResources maps each key to a resource id. A key is an exact id or
// a title carried by exactly one resource.
func resolveResources(ctx context.Context, c *call, keys []string) ([]string, error) {
	all, err := joplin.All[types.Resource](ctx, c.app.Client.Resources.List, types.ListParams{Fields: []string{"id", "title"}})
	if err != nil {
		return nil, err
	}
	byTitle := make(map[string][]string, len(all))
	ids := make(map[string]bool, len(all))
	for _, r := range all {
		ids[r.ID] = true
		byTitle[r.Title] = append(byTitle[r.Title], r.ID)
	}

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if ids[k] {
			out = append(out, k)
			continue
		}
		switch matches := byTitle[k]; len(matches) {
		case 0:
			return nil, fmt.Errorf("no attachment matches %q", k)
		case 1:
			out = append(out, matches[0])
		default:
			return nil, fmt.Errorf("ambiguous title %q matches %d attachments, use id", k, len(matches))
		}
	}
	return out, nil
}

func (b *bridge) handleCopyLink(ctx context.Context, req *mcp.CallToolRequest, input ItemInput) (*mcp.CallToolResult, LinkOutput, error) {
	var out LinkOutput
	_, err := b.run(ctx, func(ctx context.Context, c *call) error {
		item, err := c.item(ctx, input.ID)
		if err != nil {
			return err
		}
		if err := c.app.Commands.CopyLink(ctx, item); err != nil {
			return err
		}
		out.Link = c.clipboard.Text()
		if item.IsNote() {
			out.URL = uri.NoteURL(item.ID())
		}
		return nil
	})
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, LinkOutput{}, err
	}
	return nil, out, nil
}
