package types

// Sort directions accepted by order_dir.
const (
	OrderAsc  = "ASC"
	OrderDesc = "DESC"
)

type (
	// ListParams are the query parameters shared by every list endpoint.
	ListParams struct {
		Fields   []string `json:"fields,omitempty"`
		Limit    int      `json:"limit,omitempty"`
		Page     int      `json:"page,omitempty"`
		OrderBy  string   `json:"order_by,omitempty"`
		OrderDir string   `json:"order_dir,omitempty"`
	}

	// Page is one page of a list endpoint.
	Page[T any] struct {
		Items   []T  `json:"items"`
		HasMore bool `json:"has_more"`
	}
)
