package interfaces

import "context"

// MediaStore resolves media references of image and audio memories
type MediaStore interface {
	// Exists reports whether the referenced media object has been stored
	Exists(ctx context.Context, ref string) (bool, error)
}
