package store

import (
	"strings"

	"twscache/internal/model"
)

// Codec reads and writes one series file. Implementations are stateless; the
// Store owns paths, merging and atomicity. High-level code injects the codec,
// the store only depends on this interface.
type Codec interface {
	Read(path string) ([]model.Bar, error)
	Write(path string, bars []model.Bar) error
	Extension() string
}

// NewCodec creates a codec by format (csv, parquet, json).
// Returns nil if the format is not supported.
func NewCodec(format string) Codec {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return CSVCodec{}
	case "parquet":
		return ParquetCodec{}
	case "json":
		return JSONCodec{}
	default:
		return nil
	}
}
