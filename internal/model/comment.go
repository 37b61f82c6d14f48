// Package model defines core data structures shared by the composer, its
// transport and the comment backend.
package model

import "time"

type CommentID int64

type UserID string

type Comment struct {
	ID      CommentID `json:"id"`
	Content string    `json:"content"`
	Nick    string    `json:"nick"`
	Email   string    `json:"email,omitempty"`
	Link    string    `json:"link,omitempty"`

	// RID is the parent comment, 0 for a top-level comment.
	RID     CommentID `json:"rid"`
	PageKey string    `json:"page_key"`

	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// Ref returns the handle the composer uses to reply to c.
func (c *Comment) Ref() CommentRef {
	return CommentRef{ID: c.ID, Nick: c.Nick}
}

// CommentRef identifies a comment being replied to.
type CommentRef struct {
	ID   CommentID `json:"id"`
	Nick string    `json:"nick"`
}

// CommentPayload is the body sent when creating a comment.
type CommentPayload struct {
	Content string    `json:"content"`
	Nick    string    `json:"nick"`
	Email   string    `json:"email"`
	Link    string    `json:"link"`
	RID     CommentID `json:"rid"`
	PageKey string    `json:"page_key,omitempty"`
}
