package composer

import "strings"

// DraftStore mirrors the raw buffer into one storage slot. Storage failures
// are logged; the in-memory buffer stays authoritative.
type DraftStore struct {
	storage Storage
	key     string
}

func NewDraftStore(storage Storage, key string) *DraftStore {
	return &DraftStore{storage: storage, key: key}
}

// Save persists the trimmed text.
func (d *DraftStore) Save(text string) {
	if d.storage == nil {
		return
	}
	if err := d.storage.Set(d.key, strings.TrimSpace(text)); err != nil {
		composerLogger.Warn().Err(err).Str("key", d.key).Msg("Failed to save draft")
	}
}

// Restore returns the saved text, or "" when there is none.
func (d *DraftStore) Restore() string {
	if d.storage == nil {
		return ""
	}
	text, ok, err := d.storage.Get(d.key)
	if err != nil {
		composerLogger.Warn().Err(err).Str("key", d.key).Msg("Failed to restore draft")
		return ""
	}
	if !ok {
		return ""
	}
	return text
}

func (d *DraftStore) Clear() {
	d.Save("")
}
