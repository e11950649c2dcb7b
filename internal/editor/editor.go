// Package editor opens notes as local markdown files and pushes edits made
// to those files back to Joplin.
package editor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/taigrr/joplin-cli/internal/frontmatter"
	"github.com/taigrr/joplin-cli/internal/types"
)

const (
	notesDir     = "notes"
	resourcesDir = "resources"
)

// ErrNoActiveNote is returned by InsertText when no note is open.
var ErrNoActiveNote = errors.New("no active note")

var noteFilePattern = regexp.MustCompile(`^([0-9a-f]{32})\.md$`)

var noteFields = []string{"id", "title", "body", "parent_id", "is_todo", "todo_completed"}

type (
	// NoteAPI reads and updates notes.
	NoteAPI interface {
		Get(ctx context.Context, id string, fields ...string) (types.Note, error)
		Update(ctx context.Context, p types.NoteUpdateParams) (types.Note, error)
	}

	// ResourceAPI downloads attachments.
	ResourceAPI interface {
		Get(ctx context.Context, id string, fields ...string) (types.Resource, error)
		File(ctx context.Context, id string) (io.ReadCloser, error)
	}

	// Storage is the local directory note files live in.
	Storage interface {
		ResolvePath(relativePath string) (string, error)
		WriteFile(path string, data []byte) (string, error)
		ReadFile(path string) ([]byte, error)
	}

	// Launcher opens path in the user's editor and returns when it exits.
	Launcher func(ctx context.Context, command, path string) error
)

// Option customizes a Session.
type Option func(*Session)

// WithLauncher replaces the process launcher.
func WithLauncher(l Launcher) Option {
	return func(s *Session) { s.launch = l }
}

// WithLogger sets the session logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// Session tracks the note files opened in this process.
type Session struct {
	notes     NoteAPI
	resources ResourceAPI
	storage   Storage
	fm        *frontmatter.Handler
	command   string
	launch    Launcher
	logger    *zap.Logger

	syncMu    sync.Mutex
	mu        sync.Mutex
	open      map[string]types.Note
	active    string
	watcher   *fsnotify.Watcher
	cancel    context.CancelFunc
	done      chan struct{}
	listeners []func(fileName string)
}

// New creates a Session. command is the editor to launch, "" to only write
// the files.
func New(notes NoteAPI, resources ResourceAPI, storage Storage, command string, opts ...Option) *Session {
	s := &Session{
		notes:     notes,
		resources: resources,
		storage:   storage,
		fm:        frontmatter.New(),
		command:   strings.TrimSpace(command),
		launch:    runEditor,
		logger:    zap.NewNop(),
		open:      make(map[string]types.Note),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NoteIDFromFileName extracts the note id from a note file name.
func NoteIDFromFileName(name string) (string, bool) {
	m := noteFilePattern.FindStringSubmatch(filepath.Base(name))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// NoteFileName is the file a note is written to.
func NoteFileName(id string) string {
	return id + ".md"
}

// OpenAndWatch writes the note to disk, watches it for edits and launches
// the editor when one is configured. It returns the file path.
func (s *Session) OpenAndWatch(ctx context.Context, id string) (string, error) {
	return s.openNote(ctx, id, true)
}

func (s *Session) openNote(ctx context.Context, id string, launch bool) (string, error) {
	note, err := s.notes.Get(ctx, id, noteFields...)
	if err != nil {
		return "", fmt.Errorf("failed to load note %s: %w", id, err)
	}
	content, err := s.fm.Stringify(s.fm.FromNote(note))
	if err != nil {
		return "", err
	}
	fullPath, err := s.storage.WriteFile(path.Join(notesDir, NoteFileName(id)), []byte(content))
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.open[id] = note
	s.active = id
	listeners := append([]func(string){}, s.listeners...)
	s.mu.Unlock()

	if err := s.ensureWatcher(); err != nil {
		return "", err
	}
	s.logger.Debug("note opened", zap.String("id", id), zap.String("path", fullPath))
	for _, fn := range listeners {
		fn(fullPath)
	}

	if !launch || s.command == "" {
		return fullPath, nil
	}
	if err := s.launch(ctx, s.command, fullPath); err != nil {
		return fullPath, fmt.Errorf("editor failed: %w", err)
	}
	if err := s.Sync(ctx, id); err != nil {
		return fullPath, err
	}
	return fullPath, nil
}

// OnActiveChanged registers fn to run with the file path whenever a note
// becomes the active one.
func (s *Session) OnActiveChanged(fn func(fileName string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// ActiveNoteID returns the note opened last, or "".
func (s *Session) ActiveNoteID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// SetActiveNoteID restores the active note from a previous run.
func (s *Session) SetActiveNoteID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = id
}

// InsertText appends text to the active note file and pushes the result.
func (s *Session) InsertText(ctx context.Context, text string) error {
	id := s.ActiveNoteID()
	if id == "" {
		return ErrNoActiveNote
	}

	s.mu.Lock()
	_, opened := s.open[id]
	s.mu.Unlock()
	if !opened {
		if _, err := s.openNote(ctx, id, false); err != nil {
			return err
		}
	}

	rel := path.Join(notesDir, NoteFileName(id))
	data, err := s.storage.ReadFile(rel)
	if err != nil {
		return err
	}

	content := string(data)
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += text + "\n"
	if _, err := s.storage.WriteFile(rel, []byte(content)); err != nil {
		return err
	}
	return s.Sync(ctx, id)
}

// Sync pushes the file of an open note when its title or body changed.
func (s *Session) Sync(ctx context.Context, id string) error {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	s.mu.Lock()
	prev, ok := s.open[id]
	s.mu.Unlock()
	if !ok {
		return nil
	}

	data, err := s.storage.ReadFile(path.Join(notesDir, NoteFileName(id)))
	if err != nil {
		return err
	}
	doc, err := s.fm.Parse(string(data))
	if err != nil {
		return fmt.Errorf("note file %s: %w", id, err)
	}
	if doc.Header.ID != "" && doc.Header.ID != id {
		return fmt.Errorf("note file %s carries id %s", id, doc.Header.ID)
	}

	params, changed := s.fm.Changes(prev, doc)
	if !changed {
		return nil
	}
	if _, err := s.notes.Update(ctx, params); err != nil {
		return fmt.Errorf("failed to save note %s: %w", id, err)
	}

	s.mu.Lock()
	if params.Title != nil {
		prev.Title = *params.Title
	}
	if params.Body != nil {
		prev.Body = *params.Body
	}
	s.open[id] = prev
	s.mu.Unlock()
	s.logger.Info("note saved", zap.String("id", id))
	return nil
}

// OpenResource downloads a resource into the storage directory and returns
// the file path.
func (s *Session) OpenResource(ctx context.Context, id string) (string, error) {
	res, err := s.resources.Get(ctx, id, "id", "title", "mime", "file_extension")
	if err != nil {
		return "", err
	}
	rc, err := s.resources.File(ctx, id)
	if err != nil {
		return "", err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("failed to download resource %s: %w", id, err)
	}

	name := id
	if ext := strings.TrimPrefix(res.FileExtension, "."); ext != "" {
		name += "." + ext
	}
	return s.storage.WriteFile(path.Join(resourcesDir, name), data)
}

func (s *Session) ensureWatcher() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher != nil {
		return nil
	}

	dir, err := s.storage.ResolvePath(notesDir)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.watcher, s.cancel, s.done = w, cancel, make(chan struct{})
	go s.watch(ctx, w, s.done)
	return nil
}

func (s *Session) watch(ctx context.Context, w *fsnotify.Watcher, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			id, ok := NoteIDFromFileName(event.Name)
			if !ok {
				continue
			}
			if err := s.Sync(ctx, id); err != nil {
				s.logger.Warn("failed to sync note file", zap.String("file", event.Name), zap.Error(err))
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			s.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

// Close stops watching. Open files stay on disk.
func (s *Session) Close() error {
	s.mu.Lock()
	w, cancel, done := s.watcher, s.cancel, s.done
	s.watcher, s.cancel, s.done = nil, nil, nil
	s.mu.Unlock()
	if w == nil {
		return nil
	}
	cancel()
	err := w.Close()
	<-done
	return err
}

func runEditor(ctx context.Context, command, path string) error {
	args := strings.Fields(command)
	cmd := exec.CommandContext(ctx, args[0], append(args[1:], path)...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	return cmd.Run()
}
