package ports

import "context"

// SnapshotStore persists the single match document under a fixed key.
// Implementations live at the edges (Nakama storage, local file); the core
// only sees encoded documents.
type SnapshotStore interface {
	// Save writes the encoded match document, replacing any previous one.
	Save(ctx context.Context, doc []byte) error

	// Load reads the stored document. The second return is false when no
	// document exists yet; that is not an error.
	Load(ctx context.Context) ([]byte, bool, error)
}
