package notifications

import "time"

// Type tags a cadet notification with the flow that produced it.
type Type string

const (
	TypeFallin       Type = "Fallin"
	TypeEvent        Type = "Event"
	TypeAchievement  Type = "Achievement"
	TypeManageUsers  Type = "ManageUsers"
	TypePassword     Type = "Password"
	TypeSupportQuery Type = "SupportQuery"
)

// Notice is the content delivered to each recipient. An empty Link is stored
// as NULL.
type Notice struct {
	Type    Type
	Message string
	Link    string
}

// Notification is one row in a cadet's inbox.
type Notification struct {
	ID        int64     `json:"notification_id"`
	Type      Type      `json:"type"`
	Message   string    `json:"message"`
	Link      *string   `json:"link"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// Target classes accepted for super-admin broadcasts.
const (
	TargetAll    = "all"
	TargetAdmin  = "admin"
	TargetUser   = "user"
	TargetMaster = "master"
)

// Broadcast is a super-admin authored ledger entry.
type Broadcast struct {
	ID         int64     `json:"notification_id"`
	SenderType string    `json:"sender_type"`
	SenderID   string    `json:"sender_id"`
	TargetType string    `json:"target_type"`
	TargetID   *string   `json:"target_id"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}

// BroadcastInput is the create request for a broadcast.
type BroadcastInput struct {
	TargetType string `json:"target_type"`
	TargetID   string `json:"target_id"`
	Message    string `json:"message"`
}

// DisplayDate renders an ISO date (YYYY-MM-DD, optionally with a time part)
// as M/D/YYYY for notice text. Unparseable input is returned unchanged.
func DisplayDate(date string) string {
	if len(date) >= 10 {
		if t, err := time.Parse("2006-01-02", date[:10]); err == nil {
			return t.Format("1/2/2006")
		}
	}
	return date
}

// OrDash substitutes a dash for a missing location.
func OrDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
