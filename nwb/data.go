package nwb

import "fmt"

// DataSource is a possibly-lazy n-dimensional float64 array with a leading
// time axis. In-memory arrays are built with NewArray; arrays obtained from
// an open session file are lazy and read from storage on demand.
type DataSource interface {
	// Shape returns the array dimensions. The first dimension is time.
	Shape() []uint64

	// Load reads the full array into memory in row-major order.
	Load() ([]float64, error)

	// Rows reads count rows along the leading dimension starting at row
	// start, spanning all trailing dimensions.
	Rows(start, count uint64) ([]float64, error)
}

// Array is an in-memory DataSource.
type Array struct {
	shape  []uint64
	values []float64
}

// NewArray creates an in-memory array from row-major values and dimensions.
// With no dims the array is one-dimensional.
func NewArray(values []float64, dims ...uint64) *Array {
	if len(dims) == 0 {
		dims = []uint64{uint64(len(values))}
	}
	return &Array{shape: dims, values: values}
}

// Shape returns the array dimensions.
func (a *Array) Shape() []uint64 {
	return a.shape
}

// Len returns the size of the leading (time) dimension.
func (a *Array) Len() uint64 {
	if len(a.shape) == 0 {
		return 0
	}
	return a.shape[0]
}

// Load returns the full array values.
func (a *Array) Load() ([]float64, error) {
	return a.values, nil
}

// Rows returns count rows starting at row start.
func (a *Array) Rows(start, count uint64) ([]float64, error) {
	rowLen := rowLength(a.shape)
	if start+count > a.Len() {
		return nil, fmt.Errorf("rows [%d, %d) out of range for %d rows", start, start+count, a.Len())
	}
	return a.values[start*rowLen : (start+count)*rowLen], nil
}

// rowLength returns the number of elements in one leading-dimension row.
func rowLength(shape []uint64) uint64 {
	n := uint64(1)
	for _, d := range shape[1:] {
		n *= d
	}
	return n
}

// validateShape checks that values fill the given dimensions exactly.
func validateShape(values []float64, shape []uint64) error {
	n := uint64(1)
	for _, d := range shape {
		n *= d
	}
	if uint64(len(values)) != n {
		return fmt.Errorf("%d values do not fill shape %v", len(values), shape)
	}
	return nil
}

// linked wraps a DataSource to request link-instead-of-copy on write.
type linked struct {
	DataSource
}

// Linked marks a data source so that writing it creates an external link to
// the dataset it came from instead of copying the values. The source must be
// a lazy array from an open session file; wrapping an in-memory array has no
// effect since there is nothing to link to.
//
// Linking only the data (not the timestamps) allows a series to be re-timed:
// pair a linked data array with fresh local timestamps when the original
// file's clock is not aligned with the session being written.
func Linked(src DataSource) DataSource {
	return &linked{DataSource: src}
}
