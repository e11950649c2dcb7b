// Package state persists the session state that one-shot CLI invocations
// share: the selected tree item and the note open in the editor.
package state

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/taigrr/joplin-cli/internal/types"
)

type (
	// Selection is the persisted form of a types.FolderOrNote.
	Selection struct {
		Kind     string `yaml:"kind"`
		ID       string `yaml:"id"`
		Title    string `yaml:"title"`
		ParentID string `yaml:"parentId,omitempty"`
		IsTodo   bool   `yaml:"isTodo,omitempty"`
	}

	// State is the file content.
	State struct {
		Selected   *Selection `yaml:"selected,omitempty"`
		ActiveNote string     `yaml:"activeNote,omitempty"`
	}
)

// Store reads and writes the state file. It is safe for concurrent use.
type Store struct {
	path  string
	mu    sync.Mutex
	state State
}

// Open loads path, starting empty when the file does not exist.
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read state %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &s.state); err != nil {
		return nil, fmt.Errorf("failed to parse state %s: %w", path, err)
	}
	return s, nil
}

// Selected returns the saved tree selection.
func (s *Store) Selected() (types.FolderOrNote, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel := s.state.Selected
	if sel == nil || sel.ID == "" {
		return types.FolderOrNote{}, false
	}
	switch sel.Kind {
	case types.TypeFolder.String():
		return types.NewFolderItem(types.Folder{ID: sel.ID, Title: sel.Title, ParentID: sel.ParentID}), true
	case types.TypeNote.String():
		note := types.Note{ID: sel.ID, Title: sel.Title, ParentID: sel.ParentID}
		if sel.IsTodo {
			note.IsTodo = 1
		}
		return types.NewNoteItem(note), true
	}
	return types.FolderOrNote{}, false
}

// SetSelected saves item as the selection.
func (s *Store) SetSelected(item types.FolderOrNote) error {
	if !item.Valid() {
		return errors.New("cannot select an empty item")
	}
	sel := &Selection{
		Kind:     item.Kind().String(),
		ID:       item.ID(),
		Title:    item.Title(),
		ParentID: item.ParentID(),
	}
	if note, ok := item.Note(); ok {
		sel.IsTodo = note.Todo()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Selected = sel
	return s.save()
}

// ClearSelected forgets the selection.
func (s *Store) ClearSelected() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Selected = nil
	return s.save()
}

// ActiveNote returns the id of the note last opened for editing.
func (s *Store) ActiveNote() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.ActiveNote
}

// SetActiveNote records the note open for editing.
func (s *Store) SetActiveNote(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.ActiveNote = id
	return s.save()
}

func (s *Store) save() error {
	data, err := yaml.Marshal(&s.state)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create state dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write state %s: %w", s.path, err)
	}
	return nil
}
