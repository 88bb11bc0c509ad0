package storage

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
)

// Open returns the backend for loc. S3 credentials and region come from the
// default AWS chain.
func Open(ctx context.Context, loc Location) (BlobStore, error) {
	switch loc.Scheme {
	case "s3":
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		return NewS3Store(cfg, loc.Bucket), nil
	case "file":
		return NewLocalStore(loc.Root), nil
	default:
		return nil, fmt.Errorf("unsupported storage scheme %q", loc.Scheme)
	}
}
