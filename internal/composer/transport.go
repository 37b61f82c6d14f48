package composer

import (
	"context"

	"github.com/debemdeboas/archive-comments/internal/model"
)

// Transport reaches the comment backend. Canceling ctx aborts the call.
type Transport interface {
	LookupIdentity(ctx context.Context, nick, email string) (*model.IdentityResult, error)
	CreateComment(ctx context.Context, payload model.CommentPayload) (*model.Comment, error)
}

// Storage is the persistent key/value slot store.
type Storage interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// serverMessager is implemented by transport errors that carry a message
// meant for the user.
type serverMessager interface {
	ServerMessage() string
}
