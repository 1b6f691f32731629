package nwb

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/robert-malhotra/go-nwb/hdf5"
)

// File is an open session file. Series data obtained from it is lazy and
// remains readable only while the file is open.
type File struct {
	h    *hdf5.File
	path string
}

// Open opens a session file on the local filesystem.
func Open(path string, opts ...Option) (*File, error) {
	o := applyOptions(opts)

	h, err := hdf5.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening session file: %w", err)
	}
	if o.registry != nil {
		o.registry.register(path)
	}
	return &File{h: h, path: path}, nil
}

// OpenReaderAt opens a session file from an arbitrary io.ReaderAt, such as a
// remote range reader. name is used for error context only; series from
// reader-backed files cannot be linked to from other files.
func OpenReaderAt(r io.ReaderAt, name string, opts ...Option) (*File, error) {
	applyOptions(opts) // a registry cannot register a reader-backed file

	h, err := hdf5.OpenReader(r, name)
	if err != nil {
		return nil, fmt.Errorf("opening session source %q: %w", name, err)
	}
	return &File{h: h, path: ""}, nil
}

// Close closes the file and any external files opened through links.
func (f *File) Close() error {
	return f.h.Close()
}

// Container returns the underlying container file, for generic exploration
// of the object hierarchy.
func (f *File) Container() *hdf5.File {
	return f.h
}

// Read reads the session structure. Session and series metadata, trials and
// units tables are read eagerly; series data and timestamps arrays are lazy.
func (f *File) Read() (*Session, error) {
	root := f.h.Root()

	format, err := readStringAttr(root, attrFormat)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotSessionFile, err)
	}
	if format != formatName {
		return nil, fmt.Errorf("%w: written by %q", ErrNotSessionFile, format)
	}
	if version, err := readStringAttr(root, attrVersion); err != nil || version != FormatVersion {
		return nil, fmt.Errorf("%w: format version %q, expected %q", ErrNotSessionFile, version, FormatVersion)
	}

	identifier, err := readStringAttr(root, attrIdentifier)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotSessionFile, err)
	}
	description, err := readStringAttr(root, attrDescription)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotSessionFile, err)
	}
	startTime, err := readTimeAttr(root, attrStartTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotSessionFile, err)
	}
	createTime, err := readTimeAttr(root, attrCreateTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotSessionFile, err)
	}

	s := NewSession(identifier, description, startTime, WithCreateTime(createTime))

	if err := f.readSeriesGroup(s.acquisition, groupAcquisition); err != nil {
		return nil, err
	}
	if err := f.readSeriesGroup(s.stimulus, groupStimulus); err != nil {
		return nil, err
	}

	if err := f.readIntervals(s); err != nil {
		return nil, err
	}

	if g, err := f.h.OpenGroup("/units"); err == nil {
		t, err := readTable(g, "units", "/units")
		if err != nil {
			return nil, err
		}
		s.units = &Units{DynamicTable: t}
	}

	return s, nil
}

// readIntervals reads the intervals table, whatever it is named. Only one
// intervals table per session is supported; "trials" wins if several exist.
func (f *File) readIntervals(s *Session) error {
	g, err := f.h.OpenGroup("/" + groupIntervals)
	if err != nil {
		if errors.Is(err, hdf5.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("opening %s: %w", groupIntervals, err)
	}

	members, err := g.Members()
	if err != nil {
		return fmt.Errorf("listing %s: %w", groupIntervals, err)
	}
	if len(members) == 0 {
		return nil
	}

	name := members[0]
	for _, m := range members {
		if m == "trials" {
			name = m
			break
		}
	}

	tg, err := g.OpenGroup(name)
	if err != nil {
		return fmt.Errorf("opening %s/%s: %w", groupIntervals, name, err)
	}
	t, err := readTable(tg, name, "/"+groupIntervals+"/"+name)
	if err != nil {
		return err
	}
	s.trials = &TimeIntervals{DynamicTable: t}
	return nil
}

// readSeriesGroup reads all series under a category group into dst.
func (f *File) readSeriesGroup(dst *seriesSet, category string) error {
	g, err := f.h.OpenGroup("/" + category)
	if err != nil {
		// Files written by this package always have category groups; tolerate
		// their absence in foreign files.
		if errors.Is(err, hdf5.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("opening %s: %w", category, err)
	}

	members, err := g.Members()
	if err != nil {
		return fmt.Errorf("listing %s: %w", category, err)
	}

	for _, name := range members {
		ts, err := f.readSeries(g, category, name)
		if err != nil {
			return fmt.Errorf("reading series %s/%s: %w", category, name, err)
		}
		if err := dst.add(ts); err != nil {
			return err
		}
	}
	return nil
}

// readSeries reads one series group. data and timestamps stay lazy.
func (f *File) readSeries(parent *hdf5.Group, category, name string) (*TimeSeries, error) {
	g, err := parent.OpenGroup(name)
	if err != nil {
		return nil, err
	}

	ts := &TimeSeries{
		name: name,
		origin: &origin{
			filePath:  f.path,
			groupPath: "/" + category + "/" + name,
		},
	}

	if unit, err := readStringAttr(g, "unit"); err == nil {
		ts.unit = unit
	}
	if desc, err := readStringAttr(g, "description"); err == nil {
		ts.description = desc
	}
	if comments, err := readStringAttr(g, "comments"); err == nil {
		ts.comments = comments
	}

	data, err := g.OpenDataset("data")
	if err != nil {
		return nil, fmt.Errorf("opening data: %w", err)
	}
	ts.data = newLazyArray(data)

	if tsData, err := g.OpenDataset("timestamps"); err == nil {
		ts.timestamps = newLazyArray(tsData)
		return ts, nil
	}

	start, startErr := readFloatAttr(g, "starting_time")
	rate, rateErr := readFloatAttr(g, "rate")
	if startErr != nil || rateErr != nil {
		return nil, fmt.Errorf("series %q: %w", name, ErrNoTimeBase)
	}
	ts.start = start
	ts.rate = rate
	return ts, nil
}

// readTable reads a column-oriented table group eagerly.
func readTable(g *hdf5.Group, name, path string) (*DynamicTable, error) {
	description, _ := readStringAttr(g, "description")

	colnamesAttr := g.Attr("colnames")
	if colnamesAttr == nil {
		return nil, fmt.Errorf("table %s: missing colnames attribute", path)
	}
	colnames, err := colnamesAttr.ReadString()
	if err != nil {
		return nil, fmt.Errorf("table %s: reading colnames: %w", path, err)
	}

	t := NewDynamicTable(name, description)

	for _, colName := range colnames {
		ds, err := g.OpenDataset(colName)
		if err != nil {
			return nil, fmt.Errorf("table %s: opening column %q: %w", path, colName, err)
		}

		desc := ""
		if attr := ds.Attr("description"); attr != nil {
			desc, _ = attr.ReadScalarString()
		}

		if ds.IsString() {
			values, err := ds.ReadString()
			if err != nil {
				return nil, fmt.Errorf("table %s: column %q: %w", path, colName, err)
			}
			if err := t.AddStringColumn(colName, desc, values); err != nil {
				return nil, err
			}
			continue
		}

		// A companion index dataset marks a ragged column.
		if idx, err := g.OpenDataset(colName + "_index"); err == nil {
			values, err := ds.ReadFloat64()
			if err != nil {
				return nil, fmt.Errorf("table %s: column %q: %w", path, colName, err)
			}
			index, err := idx.ReadUint64()
			if err != nil {
				return nil, fmt.Errorf("table %s: column %q index: %w", path, colName, err)
			}
			lists, err := raggedDecode(values, index)
			if err != nil {
				return nil, fmt.Errorf("table %s: column %q: %w", path, colName, err)
			}
			if err := t.AddRaggedColumn(colName, desc, lists); err != nil {
				return nil, err
			}
			continue
		}

		values, err := ds.ReadFloat64()
		if err != nil {
			return nil, fmt.Errorf("table %s: column %q: %w", path, colName, err)
		}
		if err := t.AddFloatColumn(colName, desc, values); err != nil {
			return nil, err
		}
	}

	return t, nil
}

func readStringAttr(g *hdf5.Group, name string) (string, error) {
	attr := g.Attr(name)
	if attr == nil {
		return "", fmt.Errorf("attribute %q not found", name)
	}
	return attr.ReadScalarString()
}

func readFloatAttr(g *hdf5.Group, name string) (float64, error) {
	attr := g.Attr(name)
	if attr == nil {
		return 0, fmt.Errorf("attribute %q not found", name)
	}
	return attr.ReadScalarFloat64()
}

func readTimeAttr(g *hdf5.Group, name string) (time.Time, error) {
	s, err := readStringAttr(g, name)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("attribute %q: %w", name, err)
	}
	return t, nil
}
