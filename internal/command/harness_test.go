package command

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/taigrr/joplin-cli/internal/editor"
	"github.com/taigrr/joplin-cli/internal/filesystem"
	"github.com/taigrr/joplin-cli/internal/joplin"
	"github.com/taigrr/joplin-cli/internal/prompt"
	"github.com/taigrr/joplin-cli/internal/types"
)

type call struct {
	Method string
	Path   string
	Query  url.Values
	Body   string
}

// fakeJoplin records every request. Unrouted GETs answer with an empty
// page and unrouted writes with {}.
type fakeJoplin struct {
	mu     sync.Mutex
	calls  []call
	routes map[string]http.HandlerFunc
}

func (f *fakeJoplin) on(method, path string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" "+path] = h
}

func (f *fakeJoplin) reply(method, path, body string) {
	f.on(method, path, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, body)
	})
}

func (f *fakeJoplin) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.calls = append(f.calls, call{Method: r.Method, Path: r.URL.Path, Query: r.URL.Query(), Body: string(body)})
	h := f.routes[r.Method+" "+r.URL.Path]
	f.mu.Unlock()

	if h != nil {
		h(w, r)
		return
	}
	if r.Method == http.MethodGet {
		io.WriteString(w, `{"items":[],"has_more":false}`)
		return
	}
	io.WriteString(w, `{}`)
}

func (f *fakeJoplin) all() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func (f *fakeJoplin) matching(method, prefix string) []call {
	var out []call
	for _, c := range f.all() {
		if c.Method == method && strings.HasPrefix(c.Path, prefix) {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeJoplin) writes() []call {
	var out []call
	for _, c := range f.all() {
		if c.Method != http.MethodGet {
			out = append(out, c)
		}
	}
	return out
}

type fakeTree struct {
	mu        sync.Mutex
	selection *types.FolderOrNote
	visible   bool
	refreshes int
	revealed  []types.FolderOrNote
}

func (t *fakeTree) Selection() (types.FolderOrNote, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.selection == nil {
		return types.FolderOrNote{}, false
	}
	return *t.selection, true
}

func (t *fakeTree) Refresh(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.refreshes++
	return nil
}

func (t *fakeTree) Reveal(ctx context.Context, item types.FolderOrNote) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.revealed = append(t.revealed, item)
	return nil
}

func (t *fakeTree) Visible() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.visible
}

type fakeEditor struct {
	mu        sync.Mutex
	opened    []string
	active    string
	inserted  []string
	resources []string
}

func (e *fakeEditor) OpenAndWatch(ctx context.Context, id string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opened = append(e.opened, id)
	e.active = id
	return "/tmp/notes/" + id + ".md", nil
}

func (e *fakeEditor) OpenResource(ctx context.Context, id string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resources = append(e.resources, id)
	return "/tmp/resources/" + id, nil
}

func (e *fakeEditor) ActiveNoteID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

func (e *fakeEditor) InsertText(ctx context.Context, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == "" {
		return editor.ErrNoActiveNote
	}
	e.inserted = append(e.inserted, text)
	return nil
}

type fakeClipboard struct {
	text string
}

func (c *fakeClipboard) WriteText(text string) error {
	c.text = text
	return nil
}

type harness struct {
	svc       *Service
	server    *fakeJoplin
	prompt    *prompt.Scripted
	tree      *fakeTree
	editor    *fakeEditor
	clipboard *fakeClipboard
	storage   *filesystem.Service
}

func newHarness(t *testing.T, settings Settings) *harness {
	t.Helper()
	fake := &fakeJoplin{routes: make(map[string]http.HandlerFunc)}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client := joplin.New(joplin.Config{Token: settings.Token}, joplin.WithBaseURL(srv.URL))
	h := &harness{
		server:    fake,
		prompt:    prompt.NewScripted(),
		tree:      &fakeTree{},
		editor:    &fakeEditor{},
		clipboard: &fakeClipboard{},
		storage:   filesystem.New(t.TempDir(), nil),
	}
	h.svc = New(APIs{
		Notes:     client.Notes,
		Folders:   client.Folders,
		Tags:      client.Tags,
		Resources: client.Resources,
		Search:    client.Search,
		Server:    client,
	}, UI{
		Tree:      h.tree,
		Prompter:  h.prompt,
		Editor:    h.editor,
		Clipboard: h.clipboard,
		Storage:   h.storage,
	}, settings, nil)
	return h
}

func defaultSettings() Settings {
	return Settings{Token: "secret", DeleteConfirm: true}
}

func noteItem(id, title, parentID string) *types.FolderOrNote {
	item := types.NewNoteItem(types.Note{ID: id, Title: title, ParentID: parentID})
	return &item
}

func folderItem(id, title string) *types.FolderOrNote {
	item := types.NewFolderItem(types.Folder{ID: id, Title: title})
	return &item
}
