package store

import (
	"github.com/parquet-go/parquet-go"

	"twscache/internal/model"
)

// ParquetCodec stores a series as one Parquet file, columns = bar fields.
// This is the default on-disk format.
type ParquetCodec struct{}

func (ParquetCodec) Extension() string { return "parquet" }

func (ParquetCodec) Read(path string) ([]model.Bar, error) {
	return parquet.ReadFile[model.Bar](path)
}

func (ParquetCodec) Write(path string, bars []model.Bar) error {
	return parquet.WriteFile(path, bars)
}
