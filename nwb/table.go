package nwb

import "fmt"

// ColumnKind identifies how a table column stores its values.
type ColumnKind int

const (
	// FloatColumn holds one float64 per row.
	FloatColumn ColumnKind = iota
	// StringColumn holds one string per row.
	StringColumn
	// RaggedColumn holds a variable-length float64 list per row, stored as a
	// flat values array plus a row-end index array.
	RaggedColumn
)

// Column is a single column of a DynamicTable.
type Column struct {
	name        string
	description string
	kind        ColumnKind

	floats  []float64
	strings []string
	lists   [][]float64
}

// Name returns the column name.
func (c *Column) Name() string { return c.name }

// Description returns the column description.
func (c *Column) Description() string { return c.description }

// Kind returns the column kind.
func (c *Column) Kind() ColumnKind { return c.kind }

// Floats returns the values of a FloatColumn.
func (c *Column) Floats() []float64 { return c.floats }

// Strings returns the values of a StringColumn.
func (c *Column) Strings() []string { return c.strings }

// List returns row i of a RaggedColumn.
func (c *Column) List(i int) []float64 { return c.lists[i] }

// Lists returns all rows of a RaggedColumn.
func (c *Column) Lists() [][]float64 { return c.lists }

// rows returns the number of rows the column covers.
func (c *Column) rows() int {
	switch c.kind {
	case FloatColumn:
		return len(c.floats)
	case StringColumn:
		return len(c.strings)
	default:
		return len(c.lists)
	}
}

// DynamicTable stores metadata in tabular form: named columns over a shared
// row count. Ragged columns hold a variable-length list per row.
type DynamicTable struct {
	name        string
	description string
	order       []string
	cols        map[string]*Column
}

// NewDynamicTable creates an empty table.
func NewDynamicTable(name, description string) *DynamicTable {
	return &DynamicTable{
		name:        name,
		description: description,
		cols:        make(map[string]*Column),
	}
}

// Name returns the table name.
func (t *DynamicTable) Name() string { return t.name }

// Description returns the table description.
func (t *DynamicTable) Description() string { return t.description }

// Len returns the number of rows.
func (t *DynamicTable) Len() int {
	if len(t.order) == 0 {
		return 0
	}
	return t.cols[t.order[0]].rows()
}

// ColumnNames returns column names in insertion order.
func (t *DynamicTable) ColumnNames() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Column returns the named column, or nil if absent.
func (t *DynamicTable) Column(name string) *Column {
	return t.cols[name]
}

// AddFloatColumn adds a float64 column. All columns of a table must have the
// same number of rows.
func (t *DynamicTable) AddFloatColumn(name, description string, values []float64) error {
	return t.addColumn(&Column{name: name, description: description, kind: FloatColumn, floats: values})
}

// AddStringColumn adds a string column.
func (t *DynamicTable) AddStringColumn(name, description string, values []string) error {
	return t.addColumn(&Column{name: name, description: description, kind: StringColumn, strings: values})
}

// AddRaggedColumn adds a column holding a variable-length float64 list per row.
func (t *DynamicTable) AddRaggedColumn(name, description string, lists [][]float64) error {
	return t.addColumn(&Column{name: name, description: description, kind: RaggedColumn, lists: lists})
}

func (t *DynamicTable) addColumn(c *Column) error {
	if c.name == "" {
		return fmt.Errorf("table %q: column name cannot be empty", t.name)
	}
	if _, exists := t.cols[c.name]; exists {
		return fmt.Errorf("table %q: column %q: %w", t.name, c.name, ErrDuplicateName)
	}
	if len(t.order) > 0 && c.rows() != t.Len() {
		return fmt.Errorf("table %q: column %q has %d rows, table has %d",
			t.name, c.name, c.rows(), t.Len())
	}
	t.order = append(t.order, c.name)
	t.cols[c.name] = c
	return nil
}

// TimeIntervals is a DynamicTable of labeled time intervals; each row has a
// start time and a stop time in seconds relative to the session start. The
// session's trials are a TimeIntervals.
type TimeIntervals struct {
	*DynamicTable
}

// NewTimeIntervals creates an intervals table from parallel start and stop
// time arrays. Additional per-interval metadata is added with the column
// methods.
func NewTimeIntervals(name, description string, starts, stops []float64) (*TimeIntervals, error) {
	if len(starts) != len(stops) {
		return nil, fmt.Errorf("intervals %q: %d start times but %d stop times",
			name, len(starts), len(stops))
	}
	t := NewDynamicTable(name, description)
	if err := t.AddFloatColumn("start_time", "interval start, in seconds", starts); err != nil {
		return nil, err
	}
	if err := t.AddFloatColumn("stop_time", "interval stop, in seconds", stops); err != nil {
		return nil, err
	}
	return &TimeIntervals{DynamicTable: t}, nil
}

// StartTimes returns the interval start times.
func (t *TimeIntervals) StartTimes() []float64 {
	return t.Column("start_time").Floats()
}

// StopTimes returns the interval stop times.
func (t *TimeIntervals) StopTimes() []float64 {
	return t.Column("stop_time").Floats()
}

// Units stores metadata about sorted single units in tabular form; each row
// is a unit with its spike times (in seconds relative to the session start)
// and any additional metadata columns.
type Units struct {
	*DynamicTable
}

// NewUnits creates a units table. Each element of spikeTimes holds the spike
// times of one unit.
func NewUnits(description string, spikeTimes [][]float64) (*Units, error) {
	t := NewDynamicTable("units", description)
	if err := t.AddRaggedColumn("spike_times", "observed spike times, in seconds", spikeTimes); err != nil {
		return nil, err
	}
	return &Units{DynamicTable: t}, nil
}

// SpikeTimes returns the spike times of unit i.
func (u *Units) SpikeTimes(i int) []float64 {
	return u.Column("spike_times").List(i)
}

// raggedEncode flattens lists into a values array and a cumulative row-end
// index array, the on-disk form of a ragged column.
func raggedEncode(lists [][]float64) (values []float64, index []uint64) {
	index = make([]uint64, len(lists))
	var end uint64
	for i, l := range lists {
		values = append(values, l...)
		end += uint64(len(l))
		index[i] = end
	}
	return values, index
}

// raggedDecode rebuilds per-row lists from the on-disk form, validating that
// the index is monotonically non-decreasing and covers the values exactly.
func raggedDecode(values []float64, index []uint64) ([][]float64, error) {
	lists := make([][]float64, len(index))
	var start uint64
	for i, end := range index {
		if end < start || end > uint64(len(values)) {
			return nil, fmt.Errorf("row %d: end %d (start %d, %d values): %w",
				i, end, start, len(values), ErrBadRaggedIndex)
		}
		lists[i] = values[start:end]
		start = end
	}
	if start != uint64(len(values)) {
		return nil, fmt.Errorf("index covers %d of %d values: %w", start, len(values), ErrBadRaggedIndex)
	}
	return lists, nil
}
