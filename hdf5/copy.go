package hdf5

import (
	"fmt"
	"reflect"

	"github.com/robert-malhotra/go-nwb/internal/dtype"
	"github.com/robert-malhotra/go-nwb/internal/message"
)

// CopyFile copies the contents of the HDF5 file at srcPath into a new file at
// dstPath. Soft and external links are materialized: the copy contains real
// groups and datasets with no references to other files, so it can be shared
// as a single standalone file.
//
// Scalar datasets are copied as single-element datasets. Compound datatypes
// are not supported and return ErrUnsupported.
func CopyFile(srcPath, dstPath string, opts ...FileOption) error {
	src, err := Open(srcPath)
	if err != nil {
		return fmt.Errorf("opening source: %w", err)
	}
	defer src.Close()

	dst, err := Create(dstPath, opts...)
	if err != nil {
		return fmt.Errorf("creating destination: %w", err)
	}

	if err := copyGroup(src.Root(), dst.Root()); err != nil {
		dst.Close()
		return err
	}

	return dst.Close()
}

// copyGroup recursively copies a group's attributes and members.
func copyGroup(src, dst *Group) error {
	for _, name := range src.Attrs() {
		attr := src.Attr(name)
		val, err := attr.Value()
		if err != nil {
			return fmt.Errorf("reading attribute %s@%s: %w", src.Path(), name, err)
		}
		if err := dst.SetAttr(name, val); err != nil {
			return fmt.Errorf("copying attribute %s@%s: %w", src.Path(), name, err)
		}
	}

	members, err := src.Members()
	if err != nil {
		return fmt.Errorf("listing members of %s: %w", src.Path(), err)
	}

	for _, name := range members {
		// Opening through the normal path resolves soft and external links,
		// which is what materializes them in the copy.
		if childGroup, err := src.OpenGroup(name); err == nil {
			dstChild, err := dst.CreateGroup(name)
			if err != nil {
				return fmt.Errorf("creating group %q in %s: %w", name, dst.Path(), err)
			}
			if err := copyGroup(childGroup, dstChild); err != nil {
				return err
			}
			continue
		}

		childDataset, err := src.OpenDataset(name)
		if err != nil {
			return fmt.Errorf("opening member %q of %s: %w", name, src.Path(), err)
		}
		if err := copyDataset(childDataset, dst, name); err != nil {
			return err
		}
	}

	return nil
}

// copyDataset copies a single dataset, including its attributes, into dst.
func copyDataset(src *Dataset, dst *Group, name string) error {
	if src.DtypeClass() == message.ClassCompound {
		return fmt.Errorf("copying dataset %s: compound datatypes: %w", src.Path(), ErrUnsupported)
	}

	// Collect attributes up front so they are written with the dataset header.
	var opts []DatasetOption
	for _, attrName := range src.Attrs() {
		val, err := src.Attr(attrName).Value()
		if err != nil {
			return fmt.Errorf("reading attribute %s@%s: %w", src.Path(), attrName, err)
		}
		opts = append(opts, WithAttribute(attrName, val))
	}

	goType, err := src.GoType()
	if err != nil {
		return fmt.Errorf("resolving type of %s: %w", src.Path(), err)
	}

	numElements := src.NumElements()
	destVal := reflect.New(reflect.SliceOf(goType))
	destVal.Elem().Set(reflect.MakeSlice(reflect.SliceOf(goType), int(numElements), int(numElements)))
	if err := src.Read(destVal.Interface()); err != nil {
		return fmt.Errorf("reading dataset %s: %w", src.Path(), err)
	}
	flat := destVal.Elem().Interface()

	// Strings get a freshly inferred datatype; fixed-size types are copied
	// with the source shape preserved.
	if goType.Kind() == reflect.String {
		if _, err := dst.CreateDataset(name, flat, opts...); err != nil {
			return fmt.Errorf("copying dataset %s: %w", src.Path(), err)
		}
		return nil
	}

	dt, err := dtype.GoTypeToDatatype(goType)
	if err != nil {
		return fmt.Errorf("copying dataset %s: %w", src.Path(), err)
	}

	dims := src.Shape()
	if len(dims) == 0 {
		dims = []uint64{1}
	}

	ds, err := dst.CreateDatasetWithType(name, dims, dt, opts...)
	if err != nil {
		return fmt.Errorf("copying dataset %s: %w", src.Path(), err)
	}
	if err := ds.Write(flat); err != nil {
		return fmt.Errorf("writing dataset %s: %w", src.Path(), err)
	}

	return nil
}
