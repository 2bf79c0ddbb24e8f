package archive

import (
	"context"

	"product-manager/internal/model"

	"github.com/rs/zerolog"
)

// fallbackArchiver tries S3 first, then the local directory.
type fallbackArchiver struct {
	s3     Archiver
	file   Archiver
	logger zerolog.Logger
}

// NewFallbackArchiver creates an archiver that uploads to S3 and falls back
// to file when the upload fails. A nil s3 archiver means local only.
func NewFallbackArchiver(s3 Archiver, file Archiver, logger zerolog.Logger) Archiver {
	return &fallbackArchiver{
		s3:     s3,
		file:   file,
		logger: logger.With().Str("component", "fallback-archiver").Logger(),
	}
}

func (a *fallbackArchiver) Archive(ctx context.Context, products []model.Product) (string, error) {
	if a.s3 != nil {
		location, err := a.s3.Archive(ctx, products)
		if err == nil {
			return location, nil
		}

		a.logger.Warn().
			Err(err).
			Int("count", len(products)).
			Msg("failed to archive to S3, falling back to local file system")
	}

	return a.file.Archive(ctx, products)
}
