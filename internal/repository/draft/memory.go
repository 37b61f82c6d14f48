package draft

import (
	"fmt"
	"slices"
	"sync"
	"time"
)

type MemoryRepository struct {
	slots sync.Map
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) SaveSlot(key SlotKey, content []byte) error {
	if _, ok := r.slots.Load(key); !ok && len(content) == 0 {
		return nil
	}

	r.slots.Store(key, &Slot{
		Key:       key,
		Content:   slices.Clone(content),
		UpdatedAt: time.Now(),
	})
	return nil
}

func (r *MemoryRepository) GetSlot(key SlotKey) (*Slot, error) {
	if slot, ok := r.slots.Load(key); ok {
		s := *slot.(*Slot)
		return &s, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrSlotNotFound, key)
}

func (r *MemoryRepository) DeleteSlot(key SlotKey) error {
	r.slots.Delete(key)
	return nil
}

func (r *MemoryRepository) ListSlots() ([]SlotKey, error) {
	var keys []SlotKey
	r.slots.Range(func(k, _ any) bool {
		keys = append(keys, k.(SlotKey))
		return true
	})
	slices.Sort(keys)
	return keys, nil
}
