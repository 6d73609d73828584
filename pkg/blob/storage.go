package blob

import "context"

// Object describes a stored blob.
type Object struct {
	URL      string // public URL for serving the blob
	PublicID string // storage key, kept so the blob can be deleted later
}

// Storage is the interface for image/QR blob storage backends.
type Storage interface {
	// Upload stores the given bytes under a key derived from the folder and
	// name, returning the public URL and storage key.
	Upload(ctx context.Context, data []byte, folder, name, contentType string) (*Object, error)

	// Delete removes a previously uploaded blob by its storage key.
	// Deleting a missing blob is not an error.
	Delete(ctx context.Context, publicID string) error
}
