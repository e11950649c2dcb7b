// Package tree keeps the folder and note hierarchy shown to the user and
// the current selection within it.
package tree

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/taigrr/joplin-cli/internal/joplin"
	"github.com/taigrr/joplin-cli/internal/types"
)

var (
	folderFields = []string{"id", "title", "parent_id"}
	noteFields   = []string{"id", "title", "parent_id", "is_todo", "todo_completed"}
)

type (
	// FolderLister pages through folders.
	FolderLister interface {
		List(ctx context.Context, p types.ListParams) (types.Page[types.Folder], error)
	}

	// NoteLister pages through notes.
	NoteLister interface {
		List(ctx context.Context, p types.ListParams) (types.Page[types.Note], error)
	}
)

// Node is one row of the hierarchy.
type Node struct {
	Item     types.FolderOrNote
	Children []*Node
	Expanded bool
	Depth    int
}

// Provider owns the hierarchy. It is safe for concurrent use.
type Provider struct {
	folders FolderLister
	notes   NoteLister
	logger  *zap.Logger

	mu        sync.RWMutex
	roots     []*Node
	index     map[string]*Node
	parents   map[string]string
	expanded  map[string]bool
	selection *types.FolderOrNote
	visible   bool
	listeners []func()
}

// New creates an empty Provider. Call Refresh to load it.
func New(folders FolderLister, notes NoteLister, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		folders:  folders,
		notes:    notes,
		logger:   logger,
		index:    make(map[string]*Node),
		parents:  make(map[string]string),
		expanded: make(map[string]bool),
	}
}

// Refresh reloads every folder and note and rebuilds the hierarchy. The
// selection survives when its item still exists.
func (p *Provider) Refresh(ctx context.Context) error {
	var (
		folders []types.Folder
		notes   []types.Note
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		folders, err = joplin.All[types.Folder](gctx, p.folders.List, types.ListParams{Fields: folderFields})
		return err
	})
	g.Go(func() error {
		var err error
		notes, err = joplin.All[types.Note](gctx, p.notes.List, types.ListParams{Fields: noteFields})
		return err
	})
	if err := g.Wait(); err != nil {
		p.logger.Warn("tree refresh failed", zap.Error(err))
		return err
	}

	roots, index, parents := build(folders, notes)

	p.mu.Lock()
	p.roots, p.index, p.parents = roots, index, parents
	if p.selection != nil {
		if n, ok := index[p.selection.ID()]; ok {
			item := n.Item
			p.selection = &item
		} else {
			p.selection = nil
		}
	}
	p.applyExpanded()
	listeners := append([]func(){}, p.listeners...)
	p.mu.Unlock()

	p.logger.Debug("tree refreshed", zap.Int("folders", len(folders)), zap.Int("notes", len(notes)))
	for _, fn := range listeners {
		fn()
	}
	return nil
}

func build(folders []types.Folder, notes []types.Note) ([]*Node, map[string]*Node, map[string]string) {
	index := make(map[string]*Node, len(folders)+len(notes))
	parents := make(map[string]string, len(folders)+len(notes))

	for _, f := range folders {
		index[f.ID] = &Node{Item: types.NewFolderItem(f)}
	}
	var roots []*Node
	attach := func(n *Node, parentID string) {
		if parent, ok := index[parentID]; ok && parentID != "" && parent.Item.IsFolder() {
			parent.Children = append(parent.Children, n)
			parents[n.Item.ID()] = parentID
			return
		}
		roots = append(roots, n)
	}
	cyclic := folderCycles(folders)
	for _, f := range folders {
		parentID := f.ParentID
		if cyclic[f.ID] {
			parentID = ""
		}
		attach(index[f.ID], parentID)
	}
	for _, note := range notes {
		n := &Node{Item: types.NewNoteItem(note)}
		index[note.ID] = n
		attach(n, note.ParentID)
	}

	sortNodes(roots, 0)
	return roots, index, parents
}

// folderCycles returns the folders whose parent chain leads back to
// themselves, including folders that are their own parent.
func folderCycles(folders []types.Folder) map[string]bool {
	parent := make(map[string]string, len(folders))
	for _, f := range folders {
		parent[f.ID] = f.ParentID
	}
	cyclic := make(map[string]bool)
	for _, f := range folders {
		seen := map[string]bool{f.ID: true}
		for id := parent[f.ID]; id != ""; id = parent[id] {
			if id == f.ID {
				cyclic[f.ID] = true
				break
			}
			if seen[id] {
				break
			}
			seen[id] = true
		}
	}
	return cyclic
}

func sortNodes(nodes []*Node, depth int) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i].Item, nodes[j].Item
		if a.IsFolder() != b.IsFolder() {
			return a.IsFolder()
		}
		return strings.ToLower(a.Title()) < strings.ToLower(b.Title())
	})
	for _, n := range nodes {
		n.Depth = depth
		sortNodes(n.Children, depth+1)
	}
}

func (p *Provider) applyExpanded() {
	for id, n := range p.index {
		n.Expanded = p.expanded[id]
	}
}

// Nodes returns the top-level nodes. The returned tree must not be modified.
func (p *Provider) Nodes() []*Node {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.roots
}

// Lookup finds an item by id in the last loaded hierarchy.
func (p *Provider) Lookup(id string) (types.FolderOrNote, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	n, ok := p.index[id]
	if !ok {
		return types.FolderOrNote{}, false
	}
	return n.Item, true
}

// Items returns every loaded item in display order.
func (p *Provider) Items() []types.FolderOrNote {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []types.FolderOrNote
	var walk func([]*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			out = append(out, n.Item)
			walk(n.Children)
		}
	}
	walk(p.roots)
	return out
}

// Selection returns the selected item.
func (p *Provider) Selection() (types.FolderOrNote, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.selection == nil {
		return types.FolderOrNote{}, false
	}
	return *p.selection, true
}

// Select replaces the selection. An invalid item clears it.
func (p *Provider) Select(item types.FolderOrNote) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !item.Valid() {
		p.selection = nil
		return
	}
	p.selection = &item
}

// Reveal selects item and expands its ancestors. Items missing from the
// hierarchy trigger one refresh.
func (p *Provider) Reveal(ctx context.Context, item types.FolderOrNote) error {
	if !item.Valid() {
		return nil
	}
	p.mu.RLock()
	_, known := p.index[item.ID()]
	p.mu.RUnlock()
	if !known {
		if err := p.Refresh(ctx); err != nil {
			return err
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if n, ok := p.index[item.ID()]; ok {
		item = n.Item
	}
	p.selection = &item
	seen := map[string]bool{item.ID(): true}
	for id := p.parents[item.ID()]; id != "" && !seen[id]; id = p.parents[id] {
		seen[id] = true
		p.expanded[id] = true
		if n, ok := p.index[id]; ok {
			n.Expanded = true
		}
	}
	return nil
}

// Visible reports whether the tree is on screen.
func (p *Provider) Visible() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.visible
}

// SetVisible marks the tree as shown or hidden.
func (p *Provider) SetVisible(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.visible = v
}

// OnRefresh registers fn to run after every successful refresh.
func (p *Provider) OnRefresh(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}
