package models

// SortBy is the user-facing sort column of the users list.
type SortBy string

const (
	SortByJoinDate   SortBy = "join_date"
	SortByName       SortBy = "name"
	SortByMntcEarned SortBy = "mntc_earned"
)

type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

// ListQuery is the full filter/sort/cursor specification for one page of the
// users list. A non-empty Search switches the controller into search mode:
// full-collection prefix fan-out, one page, no cursor.
type ListQuery struct {
	OnlyWithAddress     bool   `form:"only_with_address"`
	OnlyPendingStatus   bool   `form:"only_pending_status"`
	OnlyPendingReferral bool   `form:"only_pending_referral"`
	Search              string `form:"search"`

	SortBy  SortBy  `form:"sort_by"`
	SortDir SortDir `form:"sort_dir"`

	Cursor string `form:"cursor"`
}

// Page is one page of the users list. HasMore is computed from the native
// result size before the pending-referral post-filter, so a short Items slice
// alone never means end of data.
type Page struct {
	Items      []User `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
	HasMore    bool   `json:"has_more"`
}
