// Package archive stores products removed by cutoff deletion as gzipped JSON
// lines, on local disk or in S3.
package archive

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"product-manager/internal/model"

	"github.com/google/uuid"
)

// Archiver persists a batch of products and returns where it was written.
type Archiver interface {
	Archive(ctx context.Context, products []model.Product) (string, error)
}

// newArchiveName returns a unique object name for an archive written at now.
func newArchiveName(now time.Time) string {
	return fmt.Sprintf("products-%s-%s.jsonl.gz",
		now.UTC().Format("20060102T150405Z"),
		strings.SplitN(uuid.NewString(), "-", 2)[0],
	)
}

// Encode writes products to w as gzip-compressed JSON, one product per line.
func Encode(w io.Writer, products []model.Product) error {
	gz := gzip.NewWriter(w)
	enc := json.NewEncoder(gz)

	for _, p := range products {
		if err := enc.Encode(p); err != nil {
			_ = gz.Close()
			return fmt.Errorf("failed to encode product %s: %w", p.ID, err)
		}
	}

	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to finish gzip stream: %w", err)
	}
	return nil
}

// Decode reads products written by Encode.
func Decode(r io.Reader) ([]model.Product, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gz.Close()

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	products := make([]model.Product, 0)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var p model.Product
		if err := json.Unmarshal([]byte(line), &p); err != nil {
			return nil, fmt.Errorf("failed to decode archived product: %w", err)
		}
		products = append(products, p)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading archive: %w", err)
	}

	return products, nil
}
