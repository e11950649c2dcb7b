package types

import "fmt"

// FolderOrNote is a tree selection: exactly one of a folder or a note.
// The zero value is invalid; build one with NewFolderItem or NewNoteItem.
type FolderOrNote struct {
	kind   ModelType
	folder Folder
	note   Note
}

// NewFolderItem wraps a folder.
func NewFolderItem(f Folder) FolderOrNote {
	return FolderOrNote{kind: TypeFolder, folder: f}
}

// NewNoteItem wraps a note.
func NewNoteItem(n Note) FolderOrNote {
	return FolderOrNote{kind: TypeNote, note: n}
}

// Kind returns TypeFolder or TypeNote.
func (i FolderOrNote) Kind() ModelType { return i.kind }

// IsFolder reports whether the item wraps a folder.
func (i FolderOrNote) IsFolder() bool { return i.kind == TypeFolder }

// IsNote reports whether the item wraps a note.
func (i FolderOrNote) IsNote() bool { return i.kind == TypeNote }

// Valid reports whether the item was built through a constructor.
func (i FolderOrNote) Valid() bool {
	return i.kind == TypeFolder || i.kind == TypeNote
}

// Folder returns the wrapped folder.
func (i FolderOrNote) Folder() (Folder, bool) {
	return i.folder, i.kind == TypeFolder
}

// Note returns the wrapped note.
func (i FolderOrNote) Note() (Note, bool) {
	return i.note, i.kind == TypeNote
}

func (i FolderOrNote) ID() string {
	switch i.kind {
	case TypeFolder:
		return i.folder.ID
	case TypeNote:
		return i.note.ID
	}
	return ""
}

func (i FolderOrNote) Title() string {
	switch i.kind {
	case TypeFolder:
		return i.folder.Title
	case TypeNote:
		return i.note.Title
	}
	return ""
}

func (i FolderOrNote) ParentID() string {
	switch i.kind {
	case TypeFolder:
		return i.folder.ParentID
	case TypeNote:
		return i.note.ParentID
	}
	return ""
}

// WithTitle returns a copy carrying a new title.
func (i FolderOrNote) WithTitle(title string) FolderOrNote {
	switch i.kind {
	case TypeFolder:
		i.folder.Title = title
	case TypeNote:
		i.note.Title = title
	}
	return i
}

// ContainerID is the folder new children should be created in: the folder
// itself, or the parent of a note.
func (i FolderOrNote) ContainerID() string {
	if i.kind == TypeFolder {
		return i.folder.ID
	}
	return i.ParentID()
}

// Noun is the word used in prompts: folder, todo or note.
func (i FolderOrNote) Noun() string {
	switch i.kind {
	case TypeFolder:
		return "folder"
	case TypeNote:
		if i.note.Todo() {
			return "todo"
		}
		return "note"
	}
	return "item"
}

func (i FolderOrNote) String() string {
	return fmt.Sprintf("%s %s (%s)", i.kind, i.ID(), i.Title())
}
