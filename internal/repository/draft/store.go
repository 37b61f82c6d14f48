package draft

import (
	"errors"
)

// Store exposes a Repository as the string key/value slots the composer and
// the profile session persist into.
type Store struct {
	repo Repository
}

func NewStore(repo Repository) *Store {
	return &Store{repo: repo}
}

func (s *Store) Get(key string) (string, bool, error) {
	slot, err := s.repo.GetSlot(SlotKey(key))
	if errors.Is(err, ErrSlotNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(slot.Content), true, nil
}

func (s *Store) Set(key, value string) error {
	return s.repo.SaveSlot(SlotKey(key), []byte(value))
}
