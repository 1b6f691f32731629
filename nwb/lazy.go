package nwb

import (
	"fmt"

	"github.com/robert-malhotra/go-nwb/hdf5"
)

// LazyArray is a DataSource backed by a dataset in an open session file.
// Creating one reads only dataset metadata; values are read from storage
// when Load, Rows or At is called. A LazyArray is only valid while the file
// it came from remains open.
type LazyArray struct {
	ds    *hdf5.Dataset
	shape []uint64
}

func newLazyArray(ds *hdf5.Dataset) *LazyArray {
	return &LazyArray{ds: ds, shape: ds.Shape()}
}

// Shape returns the dataset dimensions without reading any values.
func (a *LazyArray) Shape() []uint64 {
	return a.shape
}

// Len returns the size of the leading (time) dimension.
func (a *LazyArray) Len() uint64 {
	if len(a.shape) == 0 {
		return 0
	}
	return a.shape[0]
}

// Load reads the entire array into memory in row-major order.
func (a *LazyArray) Load() ([]float64, error) {
	var out []float64
	if err := a.ds.Read(&out); err != nil {
		return nil, fmt.Errorf("loading %s: %w", a.ds.Path(), err)
	}
	return out, nil
}

// Rows reads count rows along the leading dimension starting at row start.
// Only the selected region is read from storage.
func (a *LazyArray) Rows(start, count uint64) ([]float64, error) {
	var out []float64
	if err := a.ds.ReadRows(&out, start, count); err != nil {
		return nil, fmt.Errorf("reading rows [%d, %d) of %s: %w", start, start+count, a.ds.Path(), err)
	}
	return out, nil
}

// At reads the single row at the given index.
func (a *LazyArray) At(row uint64) ([]float64, error) {
	return a.Rows(row, 1)
}

// Dataset returns the underlying container dataset.
func (a *LazyArray) Dataset() *hdf5.Dataset {
	return a.ds
}

// sourceLocation returns the file path and object path of the backing
// dataset, used to emit external links. The file path is empty for
// reader-backed (e.g. remote) files, which cannot be linked to.
func (a *LazyArray) sourceLocation() (filePath, objectPath string) {
	if !a.ds.File().IsLocal() {
		return "", a.ds.Path()
	}
	return a.ds.File().Path(), a.ds.Path()
}
