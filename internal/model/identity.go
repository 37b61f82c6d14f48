package model

import "time"

type NotifyType string

const (
	NotifyInfo    NotifyType = "i"
	NotifySuccess NotifyType = "s"
	NotifyWarning NotifyType = "w"
	NotifyError   NotifyType = "e"
)

// Notify is an unread reply addressed to the commenter.
type Notify struct {
	ID        int64     `json:"id"`
	CommentID CommentID `json:"comment_id"`
	PageKey   string    `json:"page_key"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

type IdentityUser struct {
	Nick    string `json:"nick,omitempty"`
	Link    string `json:"link,omitempty"`
	IsAdmin bool   `json:"is_admin"`
}

// IdentityResult answers a lookup for a nick and email pair.
type IdentityResult struct {
	IsLogin bool          `json:"is_login"`
	Unread  []Notify      `json:"unread"`
	User    *IdentityUser `json:"user,omitempty"`
}
