package types

type (
	// Tag is a Joplin tag.
	Tag struct {
		ID    string `json:"id,omitempty"`
		Title string `json:"title,omitempty"`
	}

	// TagCreateParams contains the payload for POST /tags.
	TagCreateParams struct {
		Title string `json:"title" validate:"required"`
	}

	// TagUpdateParams contains a partial update for PUT /tags/:id.
	TagUpdateParams struct {
		ID    string  `json:"-" validate:"required"`
		Title *string `json:"title,omitempty"`
	}
)
