// Package redis provides a read-through cache of daily selections layered
// over another repository backend. Selections are read on every gems page
// load, so serving them from Redis keeps the durable store off the hot path.
package redis

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/redis/go-redis/v9"

	"github.com/Neperienx/souvella-web-sub000/pkg/domain/interfaces"
)

const (
	defaultKeyPrefix = "souvella:selection:"
	defaultTTL       = 48 * time.Hour
)

// Repository wraps a base repository and overrides DailySelection with a
// cached implementation. All other entity repositories are delegated.
type Repository struct {
	interfaces.Repository
	client    *redis.Client
	selection *dailySelectionRepository
}

var _ interfaces.Repository = &Repository{}

type Option func(*Repository)

// WithKeyPrefix sets the prefix of every cache key
func WithKeyPrefix(prefix string) Option {
	return func(r *Repository) {
		r.selection.keyPrefix = prefix
	}
}

// WithTTL sets the expiration of cached selections. A selection is only
// useful on its own day, so the TTL only needs to cover one day plus the
// widest timezone offset.
func WithTTL(ttl time.Duration) Option {
	return func(r *Repository) {
		r.selection.ttl = ttl
	}
}

// New connects to Redis and wraps base. The connection is verified with PING.
func New(ctx context.Context, base interfaces.Repository, opts *redis.Options, options ...Option) (*Repository, error) {
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, goerr.Wrap(err, "failed to connect to redis", goerr.V("addr", opts.Addr))
	}

	return Wrap(base, client, options...), nil
}

// Wrap builds the cached repository from an existing client
func Wrap(base interfaces.Repository, client *redis.Client, options ...Option) *Repository {
	r := &Repository{
		Repository: base,
		client:     client,
		selection: &dailySelectionRepository{
			base:      base.DailySelection(),
			client:    client,
			keyPrefix: defaultKeyPrefix,
			ttl:       defaultTTL,
		},
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *Repository) DailySelection() interfaces.DailySelectionRepository {
	return r.selection
}

// Close closes both the redis client and the base repository
func (r *Repository) Close() error {
	clientErr := r.client.Close()
	if err := r.Repository.Close(); err != nil {
		return goerr.Wrap(err, "failed to close base repository")
	}
	if clientErr != nil {
		return goerr.Wrap(clientErr, "failed to close redis client")
	}
	return nil
}
