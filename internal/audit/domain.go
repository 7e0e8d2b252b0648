package audit

import "time"

// Actions written to system_logs.
const (
	ActionLogin          = "login"
	ActionLoginFailed    = "login_failed"
	ActionLogout         = "logout"
	ActionPasswordChange = "password_change"
)

// Entry is one system_logs row.
type Entry struct {
	ID        int64     `json:"log_id"`
	UserType  string    `json:"user_type"`
	UserID    string    `json:"user_id"`
	Action    string    `json:"action"`
	IPAddress string    `json:"ip_address"`
	CreatedAt time.Time `json:"created_at"`
}

// Filters narrows a system log listing.
type Filters struct {
	UserType string
	Action   string
	Page     int
	PageSize int
}

// PagingInfo describes the current page of a listing.
type PagingInfo struct {
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	HasNext  bool `json:"has_next"`
	NextPage int  `json:"next_page,omitempty"`
	PrevPage int  `json:"prev_page,omitempty"`
}

// Result wraps one page of entries.
type Result struct {
	Logs   []Entry    `json:"logs"`
	Paging PagingInfo `json:"paging"`
}
