package draft

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/debemdeboas/archive-comments/internal/db"
	"github.com/debemdeboas/archive-comments/internal/util/compression"
)

// DBRepository keeps zstd-compressed slots in the slots table.
type DBRepository struct {
	db         db.DB
	compressor compression.Compressor
}

func NewDBRepository(db db.DB) *DBRepository {
	return &DBRepository{
		db:         db,
		compressor: compression.ZstdCompressor{},
	}
}

func (r *DBRepository) SaveSlot(key SlotKey, content []byte) error {
	if len(content) == 0 {
		var exists int
		err := r.db.QueryRow(`SELECT COUNT(1) FROM slots WHERE key = ?`, string(key)).Scan(&exists)
		if err != nil {
			return fmt.Errorf("error checking slot %s: %w", key, err)
		}
		if exists == 0 {
			return nil
		}
	}

	compressed := []byte{}
	if len(content) > 0 {
		var err error
		compressed, err = r.compressor.Compress(content)
		if err != nil {
			return fmt.Errorf("error compressing slot: %w", err)
		}
	}

	res, err := r.db.Exec(
		`INSERT INTO slots (key, content, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET content = excluded.content, updated_at = excluded.updated_at`,
		string(key), compressed, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("error saving slot %s: %w", key, err)
	}

	draftLogger.Debug().Interface("result", res).Str("key", string(key)).Msg("Slot saved")
	return nil
}

func (r *DBRepository) GetSlot(key SlotKey) (*Slot, error) {
	var compressed []byte
	var updatedAt time.Time
	err := r.db.QueryRow(`SELECT content, updated_at FROM slots WHERE key = ?`, string(key)).Scan(&compressed, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrSlotNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("error reading slot %s: %w", key, err)
	}

	slot := &Slot{Key: key, UpdatedAt: updatedAt}
	if len(compressed) == 0 {
		return slot, nil
	}

	slot.Content, err = compression.Unpack(compressed)
	if err != nil {
		return nil, fmt.Errorf("error decompressing slot %s: %w", key, err)
	}
	return slot, nil
}

func (r *DBRepository) DeleteSlot(key SlotKey) error {
	if _, err := r.db.Exec(`DELETE FROM slots WHERE key = ?`, string(key)); err != nil {
		return fmt.Errorf("error deleting slot %s: %w", key, err)
	}
	return nil
}

func (r *DBRepository) ListSlots() ([]SlotKey, error) {
	rows, err := r.db.Query(`SELECT key FROM slots ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("error listing slots: %w", err)
	}
	defer rows.Close()

	var keys []SlotKey
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("error scanning slot key: %w", err)
		}
		keys = append(keys, SlotKey(key))
	}
	return keys, rows.Err()
}
