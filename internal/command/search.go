package command

import (
	"context"
	"strings"

	"github.com/taigrr/joplin-cli/internal/prompt"
	"github.com/taigrr/joplin-cli/internal/types"
)

const (
	recentLimit = 20
	searchLimit = 100

	orderByUpdated = "user_updated_time"
)

var searchFields = []string{"id", "title"}

// Search shows a live quick-pick over notes and opens the accepted one. An
// empty query lists the most recently edited notes.
func (s *Service) Search(ctx context.Context) error {
	item, ok, err := s.prompt.QuickPick(ctx, prompt.QuickPickOptions{
		Placeholder: "Please enter key words",
		Load:        s.LoadNotes,
	})
	if err != nil {
		return s.fail("search notes", err)
	}
	if !ok || item.Value == "" {
		return nil
	}
	if _, err := s.editor.OpenAndWatch(ctx, item.Value); err != nil {
		return s.fail("open note", err)
	}
	return nil
}

// LoadNotes returns the quick-pick items for query.
func (s *Service) LoadNotes(ctx context.Context, query string) ([]prompt.Item, error) {
	if strings.TrimSpace(query) == "" {
		page, err := s.notes.List(ctx, types.ListParams{
			Fields:   searchFields,
			Limit:    recentLimit,
			OrderBy:  orderByUpdated,
			OrderDir: types.OrderDesc,
		})
		if err != nil {
			return nil, err
		}
		items := make([]prompt.Item, 0, len(page.Items))
		for _, n := range page.Items {
			items = append(items, prompt.Item{Label: n.Title, Value: n.ID})
		}
		return items, nil
	}

	page, err := s.search.Search(ctx, types.SearchParams{
		Query:    query,
		Type:     types.TypeNote.String(),
		Fields:   searchFields,
		Limit:    searchLimit,
		OrderBy:  orderByUpdated,
		OrderDir: types.OrderDesc,
	})
	if err != nil {
		return nil, err
	}
	items := make([]prompt.Item, 0, len(page.Items))
	for _, hit := range page.Items {
		items = append(items, prompt.Item{Label: hit.Title, Value: hit.ID})
	}
	return items, nil
}
