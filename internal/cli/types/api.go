package types

// APIResponse represents a generic API response with typed data
type APIResponse[T any] struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    T           `json:"data"`
	Details []Violation `json:"details,omitempty"`
}

// ListData represents a generic list data structure
type ListData[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"totalCount"`
}

// Violation is one rejected field of one submitted entity
type Violation struct {
	Index   int    `json:"index"`
	URI     string `json:"uri,omitempty"`
	Flavor  string `json:"flavor,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Document is an entity in its raw wire form
type Document = map[string]any
