package tree

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/joplin-cli/internal/types"
)

type fakeFolders struct {
	pages [][]types.Folder
	err   error
}

func (f *fakeFolders) List(ctx context.Context, p types.ListParams) (types.Page[types.Folder], error) {
	if f.err != nil {
		return types.Page[types.Folder]{}, f.err
	}
	if p.Page > len(f.pages) {
		return types.Page[types.Folder]{}, nil
	}
	return types.Page[types.Folder]{Items: f.pages[p.Page-1], HasMore: p.Page < len(f.pages)}, nil
}

type fakeNotes struct {
	notes []types.Note
	calls atomic.Int32
}

func (f *fakeNotes) List(ctx context.Context, p types.ListParams) (types.Page[types.Note], error) {
	f.calls.Add(1)
	return types.Page[types.Note]{Items: f.notes}, nil
}

func newTestProvider() (*Provider, *fakeFolders, *fakeNotes) {
	folders := &fakeFolders{pages: [][]types.Folder{
		{{ID: "f2", Title: "work"}, {ID: "f1", Title: "Archive"}},
		{{ID: "f3", Title: "projects", ParentID: "f2"}},
	}}
	notes := &fakeNotes{notes: []types.Note{
		{ID: "n1", Title: "zeta", ParentID: "f2"},
		{ID: "n2", Title: "Alpha", ParentID: "f2", IsTodo: 1},
		{ID: "n3", Title: "plan", ParentID: "f3", IsTodo: 1, TodoCompleted: 1700000000000},
		{ID: "n4", Title: "loose", ParentID: "missing"},
	}}
	return New(folders, notes, nil), folders, notes
}

func titles(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Item.Title()
	}
	return out
}

func TestProvider_Refresh(t *testing.T) {
	p, _, _ := newTestProvider()
	require.NoError(t, p.Refresh(context.Background()))

	roots := p.Nodes()
	assert.Equal(t, []string{"Archive", "work", "loose"}, titles(roots))

	work := roots[1]
	assert.Equal(t, []string{"projects", "Alpha", "zeta"}, titles(work.Children))
	assert.Equal(t, 1, work.Children[0].Depth)
	assert.Equal(t, 2, work.Children[0].Children[0].Depth)

	item, ok := p.Lookup("n3")
	require.True(t, ok)
	assert.True(t, item.IsNote())
	assert.Len(t, p.Items(), 7)
}

func TestProvider_RefreshError(t *testing.T) {
	p, folders, _ := newTestProvider()
	folders.err = errors.New("offline")
	assert.Error(t, p.Refresh(context.Background()))
	assert.Empty(t, p.Nodes())
}

func TestProvider_SelectionSurvivesRefresh(t *testing.T) {
	p, _, notes := newTestProvider()
	ctx := context.Background()
	require.NoError(t, p.Refresh(ctx))

	item, _ := p.Lookup("n1")
	p.Select(item)

	notes.notes[0].Title = "renamed"
	require.NoError(t, p.Refresh(ctx))
	sel, ok := p.Selection()
	require.True(t, ok)
	assert.Equal(t, "renamed", sel.Title())

	notes.notes = notes.notes[1:]
	require.NoError(t, p.Refresh(ctx))
	_, ok = p.Selection()
	assert.False(t, ok, "selection of a deleted note is cleared")
}

func TestProvider_SelectInvalidClears(t *testing.T) {
	p, _, _ := newTestProvider()
	p.Select(types.NewFolderItem(types.Folder{ID: "f1"}))
	p.Select(types.FolderOrNote{})
	_, ok := p.Selection()
	assert.False(t, ok)
}

func TestProvider_Reveal(t *testing.T) {
	p, _, notes := newTestProvider()
	ctx := context.Background()

	// unknown item triggers a refresh
	require.NoError(t, p.Reveal(ctx, types.NewNoteItem(types.Note{ID: "n3"})))
	assert.Equal(t, int32(1), notes.calls.Load())

	sel, ok := p.Selection()
	require.True(t, ok)
	assert.Equal(t, "plan", sel.Title())

	roots := p.Nodes()
	work := roots[1]
	assert.True(t, work.Expanded)
	assert.True(t, work.Children[0].Expanded)
	assert.False(t, roots[0].Expanded)

	// expansion survives a refresh
	require.NoError(t, p.Refresh(ctx))
	assert.True(t, p.Nodes()[1].Expanded)
}

func TestProvider_ParentCycles(t *testing.T) {
	folders := &fakeFolders{pages: [][]types.Folder{{
		{ID: "self", Title: "self", ParentID: "self"},
		{ID: "a", Title: "a", ParentID: "b"},
		{ID: "b", Title: "b", ParentID: "a"},
		{ID: "c", Title: "c", ParentID: "a"},
	}}}
	notes := &fakeNotes{notes: []types.Note{{ID: "n1", Title: "deep", ParentID: "c"}}}
	p := New(folders, notes, nil)

	require.NoError(t, p.Refresh(context.Background()))
	assert.Equal(t, []string{"a", "b", "self"}, titles(p.Nodes()))
	assert.Len(t, p.Items(), 5)

	item, ok := p.Lookup("n1")
	require.True(t, ok)
	require.NoError(t, p.Reveal(context.Background(), item))
	sel, ok := p.Selection()
	require.True(t, ok)
	assert.Equal(t, "n1", sel.ID())

	var buf bytes.Buffer
	require.NoError(t, p.Render(&buf, RenderOptions{ExpandAll: true}))
	assert.Contains(t, buf.String(), "deep")
}

func TestProvider_OnRefresh(t *testing.T) {
	p, _, _ := newTestProvider()
	var n int
	p.OnRefresh(func() { n++ })
	require.NoError(t, p.Refresh(context.Background()))
	require.NoError(t, p.Refresh(context.Background()))
	assert.Equal(t, 2, n)
}

func TestProvider_Visible(t *testing.T) {
	p, _, _ := newTestProvider()
	assert.False(t, p.Visible())
	p.SetVisible(true)
	assert.True(t, p.Visible())
}

func TestProvider_Render(t *testing.T) {
	p, _, _ := newTestProvider()
	ctx := context.Background()
	require.NoError(t, p.Refresh(ctx))

	var buf bytes.Buffer
	require.NoError(t, p.Render(&buf, RenderOptions{ExpandAll: true, ShowIDs: true}))
	out := buf.String()
	for _, want := range []string{"Archive", "projects", "plan", "Alpha", "zeta", "loose", "n4", "☐", "☑"} {
		assert.Contains(t, out, want)
	}
	assert.Equal(t, 7, strings.Count(out, "\n"))

	buf.Reset()
	require.NoError(t, p.Render(&buf, RenderOptions{}))
	assert.Equal(t, 3, strings.Count(buf.String(), "\n"), "collapsed folders hide children")
}

type countingTarget struct {
	calls atomic.Int32
	err   error
}

func (c *countingTarget) Refresh(ctx context.Context) error {
	c.calls.Add(1)
	return c.err
}

func TestRefresher_Tick(t *testing.T) {
	target := &countingTarget{err: errors.New("offline")}
	r := NewRefresher(target, 0, nil)
	assert.Equal(t, DefaultInterval, r.interval)

	r.tick(context.Background())
	assert.Equal(t, int32(1), target.calls.Load())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.tick(ctx)
	assert.Equal(t, int32(1), target.calls.Load(), "cancelled context skips the refresh")
}

func TestRefresher_StartStop(t *testing.T) {
	target := &countingTarget{}
	r := NewRefresher(target, time.Second, nil)
	r.Start(context.Background())
	r.Start(context.Background())

	assert.Eventually(t, func() bool { return target.calls.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
	r.Stop()
	r.Stop()

	after := target.calls.Load()
	time.Sleep(1200 * time.Millisecond)
	assert.Equal(t, after, target.calls.Load())
}
