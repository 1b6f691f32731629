// Package export writes session tables to Parquet for downstream analysis
// tooling.
//
// Scalar columns go into one file whose schema mirrors the table. Ragged
// columns do not fit a flat row, so each one is written to a companion file
// in long format: one (row, value) pair per element, named after the source
// file with the column name appended.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress"

	"github.com/robert-malhotra/go-nwb/nwb"
)

// Options configures the Parquet output.
type Options struct {
	// Compression algorithm for all columns.
	Compression CompressionType
}

// CompressionType represents a Parquet compression algorithm.
type CompressionType int

const (
	CompressionNone CompressionType = iota
	CompressionSnappy
	CompressionZstd
	CompressionGzip
)

// DefaultOptions returns the default Parquet options.
func DefaultOptions() Options {
	return Options{Compression: CompressionZstd}
}

// getCompression returns the parquet-go compression codec.
func getCompression(ct CompressionType) compress.Codec {
	switch ct {
	case CompressionSnappy:
		return &parquet.Snappy
	case CompressionZstd:
		return &parquet.Zstd
	case CompressionGzip:
		return &parquet.Gzip
	default:
		return &parquet.Uncompressed
	}
}

// ElementRow is one element of a ragged column in long format.
type ElementRow struct {
	Row   int64   `parquet:"row"`
	Value float64 `parquet:"value"`
}

// TableToParquet writes the table to path. Scalar columns become Parquet
// columns of the same name; each ragged column is written to a separate
// long-format file next to path (see ElementRowPath).
func TableToParquet(path string, t *nwb.DynamicTable, opts Options) error {
	fields := parquet.Group{}
	var scalar, ragged []*nwb.Column
	for _, name := range t.ColumnNames() {
		col := t.Column(name)
		switch col.Kind() {
		case nwb.FloatColumn:
			fields[name] = parquet.Leaf(parquet.DoubleType)
			scalar = append(scalar, col)
		case nwb.StringColumn:
			fields[name] = parquet.String()
			scalar = append(scalar, col)
		case nwb.RaggedColumn:
			ragged = append(ragged, col)
		default:
			return fmt.Errorf("column %s: unknown kind %d", name, col.Kind())
		}
	}

	if len(scalar) > 0 {
		if err := writeScalar(path, t, fields, scalar, opts); err != nil {
			return err
		}
	}
	for _, col := range ragged {
		if err := writeRagged(ElementRowPath(path, col.Name()), col, opts); err != nil {
			return err
		}
	}
	return nil
}

// ElementRowPath returns the companion file path for a ragged column, e.g.
// trials.parquet + "spike_times" -> trials_spike_times.parquet.
func ElementRowPath(tablePath, column string) string {
	ext := filepath.Ext(tablePath)
	return strings.TrimSuffix(tablePath, ext) + "_" + column + ext
}

func writeScalar(path string, t *nwb.DynamicTable, fields parquet.Group, cols []*nwb.Column, opts Options) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	schema := parquet.NewSchema(t.Name(), fields)
	w := parquet.NewGenericWriter[map[string]any](f, schema,
		parquet.Compression(getCompression(opts.Compression)))

	rows := make([]map[string]any, t.Len())
	for i := range rows {
		row := make(map[string]any, len(cols))
		for _, col := range cols {
			switch col.Kind() {
			case nwb.FloatColumn:
				row[col.Name()] = col.Floats()[i]
			case nwb.StringColumn:
				row[col.Name()] = col.Strings()[i]
			}
		}
		rows[i] = row
	}

	if _, err := w.Write(rows); err != nil {
		f.Close()
		return fmt.Errorf("write rows: %w", err)
	}
	if err := w.Close(); err != nil {
		f.Close()
		return fmt.Errorf("close writer: %w", err)
	}
	return f.Close()
}

func writeRagged(path string, col *nwb.Column, opts Options) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	w := parquet.NewGenericWriter[ElementRow](f,
		parquet.Compression(getCompression(opts.Compression)))

	var rows []ElementRow
	for i, cell := range col.Lists() {
		for _, v := range cell {
			rows = append(rows, ElementRow{Row: int64(i), Value: v})
		}
	}

	if len(rows) > 0 {
		if _, err := w.Write(rows); err != nil {
			f.Close()
			return fmt.Errorf("write rows: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		f.Close()
		return fmt.Errorf("close writer: %w", err)
	}
	return f.Close()
}

// ReadElementRows reads a long-format companion file back, mainly for
// verification.
func ReadElementRows(path string) ([]ElementRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	r := parquet.NewGenericReader[ElementRow](f)
	defer r.Close()

	rows := make([]ElementRow, r.NumRows())
	if len(rows) == 0 {
		return nil, nil
	}
	n, err := r.Read(rows)
	if err != nil && n < len(rows) {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return rows[:n], nil
}
