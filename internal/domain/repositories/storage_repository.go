package repositories

import (
	"context"
	"errors"
)

// ErrObjectNotFound marks reads of objects that do not exist. GetTextIfExists
// does not return it: absence is reported through its boolean result.
var ErrObjectNotFound = errors.New("object not found")

// StorageRepository is the object-storage surface the core consumes.
//
// ListKeys and DeletePrefix exist for administrative cleanup only; the sync
// and retention paths must never call them.
type StorageRepository interface {
	// GetTextIfExists reads a UTF-8 object. Absence is reported through
	// the second return value, not an error.
	GetTextIfExists(ctx context.Context, key string) (string, bool, error)

	// UploadText writes a UTF-8 object.
	UploadText(ctx context.Context, key, content string) error

	// UploadDirectoryAsTarGz archives a local directory (no base directory
	// inside the archive) and uploads it. Implementations may suppress the
	// upload when the remote already holds an archive with a matching
	// content hash; they still report success.
	UploadDirectoryAsTarGz(ctx context.Context, localPath, key string) error

	// DeleteObjects removes the given keys, batching as needed.
	DeleteObjects(ctx context.Context, keys []string) error

	// DeletePrefix removes every object below the prefix. Cleanup only.
	DeletePrefix(ctx context.Context, prefix string) error

	// ListKeys enumerates keys below the prefix. Cleanup only.
	ListKeys(ctx context.Context, prefix string) ([]string, error)
}
