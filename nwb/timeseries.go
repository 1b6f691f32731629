package nwb

import "fmt"

// TimeSeries is a named data array with an associated time base. The time
// base is either an explicit timestamps array (one entry per leading-
// dimension row, in seconds relative to the session start) or a starting
// time plus a fixed sampling rate.
type TimeSeries struct {
	name        string
	unit        string
	description string
	comments    string

	data       DataSource
	timestamps DataSource // nil when rate-based
	start      float64
	rate       float64 // Hz; 0 when timestamp-based

	// origin records where this series lives on disk when it was read from
	// a file. Used to emit container-level external links on write.
	origin *origin
}

// origin identifies a series group inside a session file on disk.
type origin struct {
	filePath  string // path of the containing file ("" for reader-backed files)
	groupPath string // absolute object path of the series group
}

// TimeSeriesOption configures a TimeSeries at construction.
type TimeSeriesOption func(*TimeSeries)

// WithTimestamps sets an explicit timestamps array, one entry per row of the
// leading data dimension.
func WithTimestamps(timestamps []float64) TimeSeriesOption {
	return func(ts *TimeSeries) {
		ts.timestamps = NewArray(timestamps)
		ts.rate = 0
	}
}

// WithTimestampSource sets the timestamps from an existing data source, such
// as a lazy array from another file.
func WithTimestampSource(src DataSource) TimeSeriesOption {
	return func(ts *TimeSeries) {
		ts.timestamps = src
		ts.rate = 0
	}
}

// WithRate sets a regular time base: the time of the first sample and the
// sampling rate in Hz.
func WithRate(start, rate float64) TimeSeriesOption {
	return func(ts *TimeSeries) {
		ts.timestamps = nil
		ts.start = start
		ts.rate = rate
	}
}

// WithDescription sets the series description.
func WithDescription(desc string) TimeSeriesOption {
	return func(ts *TimeSeries) {
		ts.description = desc
	}
}

// WithComments sets free-form comments on the series.
func WithComments(comments string) TimeSeriesOption {
	return func(ts *TimeSeries) {
		ts.comments = comments
	}
}

// NewTimeSeries creates a time series. unit names the measurement unit of
// the data values. Exactly one time base must be provided via WithTimestamps,
// WithTimestampSource or WithRate, and an explicit timestamps array must have
// one entry per leading-dimension row.
func NewTimeSeries(name string, data DataSource, unit string, opts ...TimeSeriesOption) (*TimeSeries, error) {
	if name == "" {
		return nil, fmt.Errorf("time series name cannot be empty")
	}
	if data == nil {
		return nil, fmt.Errorf("time series %q: data cannot be nil", name)
	}

	ts := &TimeSeries{
		name: name,
		unit: unit,
		data: data,
	}
	for _, opt := range opts {
		opt(ts)
	}

	if ts.timestamps == nil && ts.rate == 0 {
		return nil, fmt.Errorf("time series %q: %w", name, ErrNoTimeBase)
	}
	if ts.timestamps != nil {
		shape := data.Shape()
		tsShape := ts.timestamps.Shape()
		if len(shape) == 0 || len(tsShape) != 1 || tsShape[0] != shape[0] {
			return nil, fmt.Errorf("time series %q: %d timestamps for %v data: %w",
				name, tsShape[0], shape, ErrLengthMismatch)
		}
	}

	return ts, nil
}

// Name returns the series name.
func (ts *TimeSeries) Name() string { return ts.name }

// Unit returns the measurement unit of the data values.
func (ts *TimeSeries) Unit() string { return ts.unit }

// Description returns the series description.
func (ts *TimeSeries) Description() string { return ts.description }

// Comments returns the series comments.
func (ts *TimeSeries) Comments() string { return ts.comments }

// Data returns the data array. For series read from a file this is lazy.
func (ts *TimeSeries) Data() DataSource { return ts.data }

// Timestamps returns the timestamps array, or nil for rate-based series.
func (ts *TimeSeries) Timestamps() DataSource { return ts.timestamps }

// Rate returns the sampling rate in Hz, or 0 for timestamp-based series.
func (ts *TimeSeries) Rate() float64 { return ts.rate }

// StartingTime returns the time of the first sample for rate-based series.
func (ts *TimeSeries) StartingTime() float64 { return ts.start }
