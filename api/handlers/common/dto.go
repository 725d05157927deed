package common

// APIResponse wraps a successful or failed result.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// PaginationMeta carries paging information for list responses.
type PaginationMeta struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"page_size"`
	Total     int64 `json:"total"`
	TotalPage int   `json:"total_page"`
}

// ListResponse pairs items with their pagination metadata.
type ListResponse struct {
	Items      interface{}    `json:"items"`
	Pagination PaginationMeta `json:"pagination"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// NewPagination builds PaginationMeta from limit/offset style inputs.
func NewPagination(limit, offset int, total int64) PaginationMeta {
	if limit <= 0 {
		limit = 50
	}
	page := offset/limit + 1
	totalPage := int((total + int64(limit) - 1) / int64(limit))
	return PaginationMeta{Page: page, PageSize: limit, Total: total, TotalPage: totalPage}
}
