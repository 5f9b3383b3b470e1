// internal/transport/transport.go
package transport

import "context"

// Object is one remote entry as reported by a listing.
type Object struct {
	Name string
	Size int64
}

// Transport defines the interface for remote backup stores. Implementations
// wrap either an external tool (rclone) or a storage SDK (S3); non-zero
// tool exits and SDK failures surface as core.ErrTransport with the
// underlying diagnostics attached.
type Transport interface {
	// Upload copies the local file to the remote store under name
	Upload(ctx context.Context, localPath, name string) error

	// List enumerates the objects under the configured remote location
	List(ctx context.Context) ([]Object, error)

	// Delete removes one object by name
	Delete(ctx context.Context, name string) error

	// Destination returns a human-readable remote target for logs and
	// notification payloads
	Destination() string
}
