package types

type (
	// SearchParams contains the query for GET /search.
	SearchParams struct {
		Query    string   `json:"query" validate:"required"`
		Type     string   `json:"type,omitempty"`
		Fields   []string `json:"fields,omitempty"`
		Limit    int      `json:"limit,omitempty"`
		Page     int      `json:"page,omitempty"`
		OrderBy  string   `json:"order_by,omitempty"`
		OrderDir string   `json:"order_dir,omitempty"`
	}

	// SearchHit is one result row. Only the requested fields are set.
	SearchHit struct {
		ID              string `json:"id"`
		Title           string `json:"title"`
		ParentID        string `json:"parent_id,omitempty"`
		UserUpdatedTime int64  `json:"user_updated_time,omitempty"`
	}
)
