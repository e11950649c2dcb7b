// Package types defines the Joplin data structures shared across the client,
// the command layer and the transports.
package types

// ModelType mirrors Joplin's type_ discriminator.
type ModelType int

const (
	TypeNote     ModelType = 1
	TypeFolder   ModelType = 2
	TypeResource ModelType = 4
	TypeTag      ModelType = 5
)

// String returns the lower-case name used in prompts and logs.
func (t ModelType) String() string {
	switch t {
	case TypeNote:
		return "note"
	case TypeFolder:
		return "folder"
	case TypeResource:
		return "resource"
	case TypeTag:
		return "tag"
	default:
		return "unknown"
	}
}

type (
	// Note is a Joplin note. List and get calls only populate the
	// requested fields.
	Note struct {
		ID              string `json:"id,omitempty"`
		Title           string `json:"title,omitempty"`
		ParentID        string `json:"parent_id,omitempty"`
		Body            string `json:"body,omitempty"`
		IsTodo          int    `json:"is_todo,omitempty"`
		TodoCompleted   int64  `json:"todo_completed,omitempty"`
		CreatedTime     int64  `json:"created_time,omitempty"`
		UpdatedTime     int64  `json:"updated_time,omitempty"`
		UserUpdatedTime int64  `json:"user_updated_time,omitempty"`
	}

	// NoteCreateParams contains the payload for POST /notes.
	NoteCreateParams struct {
		Title    string `json:"title" validate:"required"`
		ParentID string `json:"parent_id,omitempty"`
		Body     string `json:"body,omitempty"`
		IsTodo   int    `json:"is_todo,omitempty" validate:"oneof=0 1"`
	}

	// NoteUpdateParams contains a partial update for PUT /notes/:id.
	// Nil fields are left untouched on the server.
	NoteUpdateParams struct {
		ID            string  `json:"-" validate:"required"`
		Title         *string `json:"title,omitempty"`
		ParentID      *string `json:"parent_id,omitempty"`
		Body          *string `json:"body,omitempty"`
		IsTodo        *int    `json:"is_todo,omitempty"`
		TodoCompleted *int64  `json:"todo_completed,omitempty"`
	}
)

// Todo reports whether the note is a todo item.
func (n Note) Todo() bool {
	return n.IsTodo != 0
}

// Completed reports whether the todo has been checked off.
func (n Note) Completed() bool {
	return n.TodoCompleted != 0
}
