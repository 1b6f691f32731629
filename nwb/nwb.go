// Package nwb reads and writes neurophysiology session files.
//
// A Session represents a single recording session: named time series grouped
// into acquisition and stimulus categories, plus tabular trials and sorted
// unit (spike) data. Sessions are persisted as HDF5 container files and can
// reference data in other session files through external links, which are
// resolved when the referencing file is read.
//
// Typical write flow:
//
//	s := nwb.NewSession("EXP1", "recognition memory task", startTime)
//	ts, _ := nwb.NewTimeSeries("raw_voltage", nwb.NewArray(data, 100, 10), "SIunit",
//	    nwb.WithTimestamps(timestamps))
//	s.AddAcquisition(ts)
//	nwb.Write("session1.nwb", s)
//
// Typical read flow:
//
//	f, _ := nwb.Open("session1.nwb")
//	defer f.Close()
//	s, _ := f.Read()
//	ts, _ := s.Acquisition("raw_voltage")
//	rows, _ := ts.Data().Rows(0, 10) // lazy: only these rows are read
package nwb

import "errors"

// Common errors
var (
	ErrDuplicateName  = errors.New("a series with this name already exists")
	ErrNotInSession   = errors.New("series not found in session")
	ErrNoTimeBase     = errors.New("time series has neither timestamps nor a sampling rate")
	ErrLengthMismatch = errors.New("timestamps length does not match leading data dimension")
	ErrBadRaggedIndex = errors.New("ragged column index is not monotonically non-decreasing")
	ErrNotSessionFile = errors.New("file does not contain session metadata")
)

// FormatVersion is written to every session file and checked on read.
const FormatVersion = "1.0"
