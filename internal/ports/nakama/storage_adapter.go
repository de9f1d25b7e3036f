package nakama

import (
	"context"
	"fmt"

	"riichiscore/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// NakamaStorageAdapter implements ports.SnapshotStore on top of Nakama's
// storage engine, keeping the match document under a fixed collection/key.
type NakamaStorageAdapter struct {
	nk runtime.NakamaModule
}

// NewNakamaStorageAdapter creates a new storage adapter.
func NewNakamaStorageAdapter(nk runtime.NakamaModule) *NakamaStorageAdapter {
	return &NakamaStorageAdapter{nk: nk}
}

// Save writes the encoded match document, replacing any previous version.
func (a *NakamaStorageAdapter) Save(ctx context.Context, doc []byte) error {
	writes := []*runtime.StorageWrite{{
		Collection:      StorageCollection,
		Key:             StorageKey,
		Value:           string(doc),
		PermissionRead:  2, // public read so any client can render the board
		PermissionWrite: 0, // only the runtime writes
	}}
	if _, err := a.nk.StorageWrite(ctx, writes); err != nil {
		return fmt.Errorf("failed to save match document: %w", err)
	}
	return nil
}

// Load reads the stored match document; absence is not an error.
func (a *NakamaStorageAdapter) Load(ctx context.Context) ([]byte, bool, error) {
	reads := []*runtime.StorageRead{{
		Collection: StorageCollection,
		Key:        StorageKey,
	}}
	objects, err := a.nk.StorageRead(ctx, reads)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load match document: %w", err)
	}
	if len(objects) == 0 {
		return nil, false, nil
	}
	return []byte(objects[0].Value), true, nil
}

var _ ports.SnapshotStore = (*NakamaStorageAdapter)(nil)
