package editor

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/joplin-cli/internal/filesystem"
	"github.com/taigrr/joplin-cli/internal/joplin"
	"github.com/taigrr/joplin-cli/internal/types"
)

const testNoteID = "0123456789abcdef0123456789abcdef"

type fakeNotes struct {
	mu      sync.Mutex
	notes   map[string]types.Note
	updates []types.NoteUpdateParams
}

func (f *fakeNotes) Get(ctx context.Context, id string, fields ...string) (types.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notes[id]
	if !ok {
		return types.Note{}, &joplin.NotFoundError{StatusError: &joplin.StatusError{StatusCode: 404}}
	}
	return n, nil
}

func (f *fakeNotes) Update(ctx context.Context, p types.NoteUpdateParams) (types.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, p)
	n := f.notes[p.ID]
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Body != nil {
		n.Body = *p.Body
	}
	f.notes[p.ID] = n
	return n, nil
}

func (f *fakeNotes) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}

func (f *fakeNotes) note(id string) types.Note {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.notes[id]
}

type fakeResources struct{}

func (fakeResources) Get(ctx context.Context, id string, fields ...string) (types.Resource, error) {
	return types.Resource{ID: id, Title: "diagram", Mime: "image/png", FileExtension: "png"}, nil
}

func (fakeResources) File(ctx context.Context, id string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("PNGDATA")), nil
}

func newTestSession(t *testing.T, command string, opts ...Option) (*Session, *fakeNotes, string) {
	t.Helper()
	dir := t.TempDir()
	notes := &fakeNotes{notes: map[string]types.Note{
		testNoteID: {ID: testNoteID, Title: "Groceries", ParentID: "f1", Body: "- milk\n"},
	}}
	s := New(notes, fakeResources{}, filesystem.New(dir, nil), command, opts...)
	t.Cleanup(func() { s.Close() })
	return s, notes, dir
}

func TestNoteIDFromFileName(t *testing.T) {
	tests := []struct {
		name   string
		want   string
		wantOK bool
	}{
		{name: testNoteID + ".md", want: testNoteID, wantOK: true},
		{name: "/tmp/notes/" + testNoteID + ".md", want: testNoteID, wantOK: true},
		{name: testNoteID + ".txt"},
		{name: "0123.md"},
		{name: strings.ToUpper(testNoteID) + ".md"},
		{name: "x" + testNoteID + ".md"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NoteIDFromFileName(tt.name)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSession_OpenAndWatchWritesFile(t *testing.T) {
	s, _, dir := newTestSession(t, "")
	var opened []string
	s.OnActiveChanged(func(name string) { opened = append(opened, name) })

	path, err := s.OpenAndWatch(context.Background(), testNoteID)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "notes", testNoteID+".md"), path)
	assert.Equal(t, testNoteID, s.ActiveNoteID())
	assert.Equal(t, []string{path}, opened)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "---\n"))
	assert.Contains(t, string(data), "title: Groceries")
	assert.True(t, strings.HasSuffix(string(data), "---\n- milk\n"))
}

func TestSession_OpenMissingNote(t *testing.T) {
	s, _, _ := newTestSession(t, "")
	_, err := s.OpenAndWatch(context.Background(), "ffffffffffffffffffffffffffffffff")
	require.Error(t, err)
	assert.Empty(t, s.ActiveNoteID())
}

func TestSession_WatcherPushesEdits(t *testing.T) {
	s, notes, _ := newTestSession(t, "")
	path, err := s.OpenAndWatch(context.Background(), testNoteID)
	require.NoError(t, err)

	edited := "---\nid: " + testNoteID + "\ntitle: Shopping\n---\n- milk\n- eggs\n"
	require.NoError(t, os.WriteFile(path, []byte(edited), 0o644))

	assert.Eventually(t, func() bool {
		n := notes.note(testNoteID)
		return n.Title == "Shopping" && n.Body == "- milk\n- eggs\n"
	}, 3*time.Second, 20*time.Millisecond)
}

func TestSession_LauncherAndFinalSync(t *testing.T) {
	var launched []string
	launcher := func(ctx context.Context, command, path string) error {
		launched = append(launched, command, path)
		// the editor saves before exiting
		return os.WriteFile(path, []byte("---\nid: "+testNoteID+"\ntitle: Groceries\n---\nedited\n"), 0o644)
	}
	s, notes, _ := newTestSession(t, "vim -n", WithLauncher(launcher))

	path, err := s.OpenAndWatch(context.Background(), testNoteID)
	require.NoError(t, err)
	assert.Equal(t, []string{"vim -n", path}, launched)
	assert.Equal(t, "edited\n", notes.note(testNoteID).Body)
}

func TestSession_SyncWithoutChangesIsNoop(t *testing.T) {
	s, notes, _ := newTestSession(t, "")
	_, err := s.OpenAndWatch(context.Background(), testNoteID)
	require.NoError(t, err)
	require.NoError(t, s.Sync(context.Background(), testNoteID))
	require.NoError(t, s.Sync(context.Background(), "unknown"))
	assert.Equal(t, 0, notes.updateCount())
}

func TestSession_InsertText(t *testing.T) {
	t.Run("no active note", func(t *testing.T) {
		s, _, _ := newTestSession(t, "")
		assert.ErrorIs(t, s.InsertText(context.Background(), "x"), ErrNoActiveNote)
	})

	t.Run("appends and pushes", func(t *testing.T) {
		s, notes, _ := newTestSession(t, "")
		s.SetActiveNoteID(testNoteID)
		require.NoError(t, s.InsertText(context.Background(), "![diagram](:/r1)"))
		assert.Equal(t, "- milk\n![diagram](:/r1)\n", notes.note(testNoteID).Body)
	})
}

func TestSession_OpenResource(t *testing.T) {
	s, _, dir := newTestSession(t, "")
	path, err := s.OpenResource(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "resources", "r1.png"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "PNGDATA", string(data))
}

func TestSession_CloseIdempotent(t *testing.T) {
	s, _, _ := newTestSession(t, "")
	_, err := s.OpenAndWatch(context.Background(), testNoteID)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}
