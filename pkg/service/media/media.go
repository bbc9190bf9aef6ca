// Package media checks that media references of image and audio memories
// point at uploaded Cloud Storage objects.
package media

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/option"

	"github.com/Neperienx/souvella-web-sub000/pkg/domain/interfaces"
)

const gsScheme = "gs://"

// ErrInvalidRef is returned for references that cannot name an object
var ErrInvalidRef = goerr.New("invalid media reference")

// Client implements interfaces.MediaStore using Cloud Storage
type Client struct {
	client *storage.Client
	bucket string
}

var _ interfaces.MediaStore = &Client{}

// New creates a media store bound to one bucket. References to other buckets
// are reported as missing.
func New(ctx context.Context, bucket string, opts ...option.ClientOption) (*Client, error) {
	if bucket == "" {
		return nil, goerr.New("media bucket is required")
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client", goerr.V("bucket", bucket))
	}

	return &Client{
		client: client,
		bucket: bucket,
	}, nil
}

// ParseRef splits a reference into bucket and object. Both "gs://bucket/path"
// and a bare object path relative to defaultBucket are accepted.
func ParseRef(ref, defaultBucket string) (string, string, error) {
	if ref == "" {
		return "", "", goerr.Wrap(ErrInvalidRef, "empty media reference")
	}

	if !strings.HasPrefix(ref, gsScheme) {
		object := strings.TrimPrefix(ref, "/")
		if object == "" || defaultBucket == "" {
			return "", "", goerr.Wrap(ErrInvalidRef, "media reference has no object", goerr.V("media_ref", ref))
		}
		return defaultBucket, object, nil
	}

	bucket, object, ok := strings.Cut(strings.TrimPrefix(ref, gsScheme), "/")
	if !ok || bucket == "" || object == "" {
		return "", "", goerr.Wrap(ErrInvalidRef, "malformed gs:// reference", goerr.V("media_ref", ref))
	}
	return bucket, object, nil
}

// Exists reports whether the referenced object is stored in the bucket
func (c *Client) Exists(ctx context.Context, ref string) (bool, error) {
	bucket, object, err := ParseRef(ref, c.bucket)
	if errors.Is(err, ErrInvalidRef) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if bucket != c.bucket {
		return false, nil
	}

	_, err = c.client.Bucket(bucket).Object(object).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return false, nil
	}
	if err != nil {
		return false, goerr.Wrap(err, "failed to get object attributes",
			goerr.V("bucket", bucket), goerr.V("object", object))
	}
	return true, nil
}

// Close releases the storage client
func (c *Client) Close() error {
	return c.client.Close()
}
