// Package repository persists comments and the reply notifies addressed to
// their authors.
package repository

import (
	"errors"

	"github.com/debemdeboas/archive-comments/internal/model"
	"github.com/rs/zerolog"
)

var repoLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	repoLogger = l
}

var ErrCommentNotFound = errors.New("comment not found")

type CommentRepository interface {
	// Create stores c and fills in its ID and CreatedAt. When c replies to a
	// comment by someone else, a notify for that author is created with it.
	Create(c *model.Comment) error
	Get(id model.CommentID) (*model.Comment, error)
	// List returns the comments of a page, oldest first.
	List(pageKey string) ([]model.Comment, error)
	// LatestByEmail returns the newest comment written with email.
	LatestByEmail(email string) (*model.Comment, error)

	UnreadNotifies(email string) ([]model.Notify, error)
	MarkRead(email string, ids ...int64) error

	// SetInsertNotifier sets a function called after every successful Create.
	SetInsertNotifier(notifier func(model.Comment))
}
