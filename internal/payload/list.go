package payload

type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// MaxPageSize bounds a single page of any list endpoint.
const MaxPageSize = 200

type (
	// ListReqQuery carries optional paging parameters from the query string.
	// Without page_size the whole list is returned.
	ListReqQuery struct {
		PageIndex *int `form:"page_index" binding:"omitempty,min=0"`
		PageSize  *int `form:"page_size" binding:"omitempty,min=1"`
	}
	ListResp[T any] struct {
		Rows  []T   `json:"rows"`
		Count int64 `json:"count"`
	}
)

// Window returns the limit and offset of the requested page; limit 0 means no paging.
func (q ListReqQuery) Window() (limit, offset int) {
	if q.PageSize == nil {
		return 0, 0
	}
	limit = min(*q.PageSize, MaxPageSize)
	if q.PageIndex != nil {
		offset = *q.PageIndex * limit
	}
	return limit, offset
}
