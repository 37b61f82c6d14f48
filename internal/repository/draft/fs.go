package draft

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/debemdeboas/archive-comments/internal/config"
)

// FSRepository keeps one file per slot under dir.
type FSRepository struct {
	dir string
}

func NewFSRepository(dir string) (*FSRepository, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create slot directory: %w", err)
	}
	return &FSRepository{dir: dir}, nil
}

func (r *FSRepository) path(key SlotKey) string {
	return filepath.Join(r.dir, url.PathEscape(string(key))+config.DraftFileExt)
}

func (r *FSRepository) SaveSlot(key SlotKey, content []byte) error {
	path := r.path(key)
	if len(content) == 0 {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return nil
		}
	}

	tmp, err := os.CreateTemp(r.dir, ".slot-*")
	if err != nil {
		return fmt.Errorf("failed to create temp slot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write slot %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write slot %s: %w", key, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace slot %s: %w", key, err)
	}
	return nil
}

func (r *FSRepository) GetSlot(key SlotKey) (*Slot, error) {
	path := r.path(key)
	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrSlotNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read slot %s: %w", key, err)
	}

	slot := &Slot{Key: key, Content: content}
	if info, err := os.Stat(path); err == nil {
		slot.UpdatedAt = info.ModTime()
	}
	return slot, nil
}

func (r *FSRepository) DeleteSlot(key SlotKey) error {
	err := os.Remove(r.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete slot %s: %w", key, err)
	}
	return nil
}

func (r *FSRepository) ListSlots() ([]SlotKey, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}

	var keys []SlotKey
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, config.DraftFileExt) {
			continue
		}
		key, err := url.PathUnescape(strings.TrimSuffix(name, config.DraftFileExt))
		if err != nil {
			draftLogger.Warn().Str("file", name).Msg("Skipping slot file with invalid name")
			continue
		}
		keys = append(keys, SlotKey(key))
	}
	slices.Sort(keys)
	return keys, nil
}
