package layout

import (
	"fmt"

	"github.com/robert-malhotra/go-nwb/internal/binary"
	"github.com/robert-malhotra/go-nwb/internal/message"
)

// Contiguous represents contiguous storage layout.
// Data is stored in a single contiguous block in the file.
type Contiguous struct {
	address   uint64
	size      uint64
	dataspace *message.Dataspace
	datatype  *message.Datatype
	reader    *binary.Reader
}

// NewContiguous creates a new contiguous layout handler.
func NewContiguous(
	layout *message.DataLayout,
	dataspace *message.Dataspace,
	datatype *message.Datatype,
	reader *binary.Reader,
) *Contiguous {
	size := layout.Size
	if size == 0 {
		// Calculate size from dataspace and datatype
		size = calculateDataSize(dataspace, datatype)
	}

	return &Contiguous{
		address:   layout.Address,
		size:      size,
		dataspace: dataspace,
		datatype:  datatype,
		reader:    reader,
	}
}

func (c *Contiguous) Class() message.LayoutClass {
	return message.LayoutContiguous
}

// Read reads all data from contiguous storage.
func (c *Contiguous) Read() ([]byte, error) {
	// Check for undefined address (no data allocated)
	if c.reader.IsUndefinedOffset(c.address) {
		return nil, fmt.Errorf("contiguous data not allocated")
	}

	if c.size == 0 {
		return []byte{}, nil
	}

	// Read data directly from the file
	r := c.reader.At(int64(c.address))
	data, err := r.ReadBytes(int(c.size))
	if err != nil {
		return nil, fmt.Errorf("reading contiguous data: %w", err)
	}

	return data, nil
}

// ReadSlice reads a hyperslab from contiguous storage without loading the
// whole dataset. A selection covering the trailing dimensions in full is one
// contiguous byte range on disk and is served with a single ranged read;
// other selections read one innermost run at a time.
func (c *Contiguous) ReadSlice(start, count []uint64) ([]byte, error) {
	if c.reader.IsUndefinedOffset(c.address) {
		return nil, fmt.Errorf("contiguous data not allocated")
	}

	dims := c.dataspace.Dimensions
	ndims := len(dims)
	if ndims == 0 {
		return nil, fmt.Errorf("cannot extract hyperslab from scalar dataset")
	}
	if len(start) != ndims || len(count) != ndims {
		return nil, fmt.Errorf("start and count must have %d dimensions, got %d and %d",
			ndims, len(start), len(count))
	}
	for d := 0; d < ndims; d++ {
		if start[d]+count[d] > dims[d] {
			return nil, fmt.Errorf("slice out of bounds: dimension %d, start=%d, count=%d, size=%d",
				d, start[d], count[d], dims[d])
		}
	}

	elementSize := uint64(c.datatype.Size)

	// Strides of the on-disk array (row-major)
	srcStrides := make([]uint64, ndims)
	srcStrides[ndims-1] = elementSize
	for d := ndims - 2; d >= 0; d-- {
		srcStrides[d] = srcStrides[d+1] * dims[d+1]
	}

	// Full trailing dimensions collapse to one contiguous range
	full := true
	for d := 1; d < ndims; d++ {
		if start[d] != 0 || count[d] != dims[d] {
			full = false
			break
		}
	}
	if full {
		length := count[0] * srcStrides[0]
		if length == 0 {
			return []byte{}, nil
		}
		r := c.reader.At(int64(c.address + start[0]*srcStrides[0]))
		data, err := r.ReadBytes(int(length))
		if err != nil {
			return nil, fmt.Errorf("reading contiguous slice: %w", err)
		}
		return data, nil
	}

	totalElements := uint64(1)
	for _, cnt := range count {
		totalElements *= cnt
	}
	output := make([]byte, totalElements*elementSize)

	// Strides of the result array
	dstStrides := make([]uint64, ndims)
	dstStrides[ndims-1] = elementSize
	for d := ndims - 2; d >= 0; d-- {
		dstStrides[d] = dstStrides[d+1] * count[d+1]
	}

	err := c.readSliceRecursive(output, start, count, srcStrides, dstStrides, 0, 0, 0, ndims)
	if err != nil {
		return nil, err
	}
	return output, nil
}

// readSliceRecursive reads one innermost contiguous run per leaf call.
func (c *Contiguous) readSliceRecursive(
	output []byte,
	start, count []uint64,
	srcStrides, dstStrides []uint64,
	srcOffset, dstOffset uint64,
	dim, ndims int,
) error {
	if dim == ndims-1 {
		rowBytes := count[dim] * srcStrides[dim]
		if rowBytes == 0 {
			return nil
		}
		r := c.reader.At(int64(c.address + srcOffset + start[dim]*srcStrides[dim]))
		data, err := r.ReadBytes(int(rowBytes))
		if err != nil {
			return fmt.Errorf("reading contiguous slice run: %w", err)
		}
		copy(output[dstOffset:dstOffset+rowBytes], data)
		return nil
	}

	for i := uint64(0); i < count[dim]; i++ {
		err := c.readSliceRecursive(
			output, start, count,
			srcStrides, dstStrides,
			srcOffset+(start[dim]+i)*srcStrides[dim],
			dstOffset+i*dstStrides[dim],
			dim+1, ndims,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// Address returns the data address.
func (c *Contiguous) Address() uint64 {
	return c.address
}

// Size returns the data size in bytes.
func (c *Contiguous) Size() uint64 {
	return c.size
}
