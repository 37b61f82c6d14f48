// Package draft stores the composer's plain-text slots (the draft buffer and
// the saved profile) in one of several backends.
package draft

import (
	"errors"
	"time"

	"github.com/rs/zerolog"
)

var draftLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	draftLogger = l
}

var ErrSlotNotFound = errors.New("slot not found")

type SlotKey string

type Slot struct {
	Key       SlotKey
	Content   []byte
	UpdatedAt time.Time
}

// Repository persists slots. Saving empty content into a slot that does not
// exist yet is a no-op.
type Repository interface {
	SaveSlot(key SlotKey, content []byte) error
	GetSlot(key SlotKey) (*Slot, error)
	DeleteSlot(key SlotKey) error
	ListSlots() ([]SlotKey, error)
}
