package types

import "strings"

type (
	// Resource is an attachment stored by Joplin.
	Resource struct {
		ID            string `json:"id,omitempty"`
		Title         string `json:"title,omitempty"`
		Mime          string `json:"mime,omitempty"`
		Filename      string `json:"filename,omitempty"`
		FileExtension string `json:"file_extension,omitempty"`
		Size          int64  `json:"size,omitempty"`
		UpdatedTime   int64  `json:"updated_time,omitempty"`
	}

	// ResourceCreateParams describes a file upload for POST /resources.
	ResourceCreateParams struct {
		Title string `json:"title" validate:"required"`
		Path  string `json:"-" validate:"required"`
	}

	// ResourceUpdateParams contains a partial update for PUT /resources/:id.
	ResourceUpdateParams struct {
		ID    string  `json:"-" validate:"required"`
		Title *string `json:"title,omitempty"`
	}
)

// IsImage reports whether the resource should be embedded as an image.
func (r Resource) IsImage() bool {
	return strings.HasPrefix(r.Mime, "image/")
}
