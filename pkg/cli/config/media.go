package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/Neperienx/souvella-web-sub000/pkg/service/media"
)

// Media holds CLI flags for media reference verification
type Media struct {
	bucket string
}

func (x *Media) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "media-bucket",
			Usage:       "Cloud Storage bucket holding uploaded media (verification is skipped when empty)",
			Sources:     cli.EnvVars("SOUVELLA_MEDIA_BUCKET"),
			Destination: &x.bucket,
		},
	}
}

func (x Media) LogValue() slog.Value {
	return slog.GroupValue(slog.String("bucket", x.bucket))
}

// IsConfigured returns true if a media bucket is set
func (x *Media) IsConfigured() bool {
	return x.bucket != ""
}

// Configure creates the media store. Returns nil when no bucket is set.
func (x *Media) Configure(ctx context.Context) (*media.Client, error) {
	if !x.IsConfigured() {
		return nil, nil
	}

	client, err := media.New(ctx, x.bucket)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure media store")
	}
	return client, nil
}
