package types

type (
	// Folder is a Joplin notebook.
	Folder struct {
		ID       string `json:"id,omitempty"`
		Title    string `json:"title,omitempty"`
		ParentID string `json:"parent_id,omitempty"`
	}

	// FolderCreateParams contains the payload for POST /folders.
	FolderCreateParams struct {
		Title    string `json:"title" validate:"required"`
		ParentID string `json:"parent_id,omitempty"`
	}

	// FolderUpdateParams contains a partial update for PUT /folders/:id.
	FolderUpdateParams struct {
		ID       string  `json:"-" validate:"required"`
		Title    *string `json:"title,omitempty"`
		ParentID *string `json:"parent_id,omitempty"`
	}
)
