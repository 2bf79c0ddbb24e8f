package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"product-manager/internal/clock"
	"product-manager/internal/model"

	"github.com/rs/zerolog"
)

// fileArchiver writes archives into a local directory.
type fileArchiver struct {
	dir    string
	clock  clock.Clock
	logger zerolog.Logger
}

// NewFileArchiver creates an archiver writing into dir, which is created on
// first use.
func NewFileArchiver(dir string, clk clock.Clock, logger zerolog.Logger) Archiver {
	return &fileArchiver{
		dir:    dir,
		clock:  clk,
		logger: logger.With().Str("component", "file-archiver").Logger(),
	}
}

func (a *fileArchiver) Archive(ctx context.Context, products []model.Product) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		a.logger.Error().Err(err).Str("dir", a.dir).Msg("failed to create archive directory")
		return "", fmt.Errorf("failed to create archive directory %s: %w", a.dir, err)
	}

	path := filepath.Join(a.dir, newArchiveName(a.clock.Now()))

	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		a.logger.Error().Err(err).Str("file", path).Msg("failed to create archive file")
		return "", fmt.Errorf("failed to create archive file %s: %w", path, err)
	}

	if err := Encode(file, products); err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		return "", err
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to close archive file %s: %w", path, err)
	}

	a.logger.Info().
		Str("file", path).
		Int("count", len(products)).
		Msg("products archived to local file")

	return path, nil
}
