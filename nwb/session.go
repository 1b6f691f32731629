package nwb

import (
	"fmt"
	"time"
)

// Session represents a single session of an experiment: all the data
// recorded in that session and the metadata required to understand it.
type Session struct {
	identifier  string
	description string
	startTime   time.Time
	createTime  time.Time

	acquisition *seriesSet
	stimulus    *seriesSet

	trials *TimeIntervals
	units  *Units
}

// SessionOption configures a Session at construction.
type SessionOption func(*Session)

// WithCreateTime overrides the file-create time recorded in the session.
// The default is the time NewSession was called.
func WithCreateTime(t time.Time) SessionOption {
	return func(s *Session) {
		s.createTime = t
	}
}

// NewSession creates a session. identifier should uniquely name the session;
// startTime is the wall-clock start of the recording, the reference point
// for all timestamps in the session.
func NewSession(identifier, description string, startTime time.Time, opts ...SessionOption) *Session {
	s := &Session{
		identifier:  identifier,
		description: description,
		startTime:   startTime,
		createTime:  time.Now(),
		acquisition: newSeriesSet(),
		stimulus:    newSeriesSet(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Identifier returns the session identifier.
func (s *Session) Identifier() string { return s.identifier }

// Description returns the session description.
func (s *Session) Description() string { return s.description }

// StartTime returns the session start time.
func (s *Session) StartTime() time.Time { return s.startTime }

// CreateTime returns the file-create time.
func (s *Session) CreateTime() time.Time { return s.createTime }

// AddAcquisition adds a series to the acquisition category. Names must be
// unique within the category.
func (s *Session) AddAcquisition(ts *TimeSeries) error {
	return s.acquisition.add(ts)
}

// AddStimulus adds a series to the stimulus category. Names must be unique
// within the category.
func (s *Session) AddStimulus(ts *TimeSeries) error {
	return s.stimulus.add(ts)
}

// Acquisition returns the named acquisition series.
func (s *Session) Acquisition(name string) (*TimeSeries, error) {
	return s.acquisition.get(name)
}

// Stimulus returns the named stimulus series.
func (s *Session) Stimulus(name string) (*TimeSeries, error) {
	return s.stimulus.get(name)
}

// AcquisitionNames returns acquisition series names in insertion order.
func (s *Session) AcquisitionNames() []string {
	return s.acquisition.names()
}

// StimulusNames returns stimulus series names in insertion order.
func (s *Session) StimulusNames() []string {
	return s.stimulus.names()
}

// SetTrials sets the trials table.
func (s *Session) SetTrials(t *TimeIntervals) { s.trials = t }

// Trials returns the trials table, or nil if the session has none.
func (s *Session) Trials() *TimeIntervals { return s.trials }

// SetUnits sets the sorted-units table.
func (s *Session) SetUnits(u *Units) { s.units = u }

// Units returns the sorted-units table, or nil if the session has none.
func (s *Session) Units() *Units { return s.units }

// seriesSet is an insertion-ordered set of uniquely named series.
type seriesSet struct {
	order  []string
	series map[string]*TimeSeries
}

func newSeriesSet() *seriesSet {
	return &seriesSet{series: make(map[string]*TimeSeries)}
}

func (ss *seriesSet) add(ts *TimeSeries) error {
	if ts == nil {
		return fmt.Errorf("series cannot be nil")
	}
	if _, exists := ss.series[ts.name]; exists {
		return fmt.Errorf("%q: %w", ts.name, ErrDuplicateName)
	}
	ss.order = append(ss.order, ts.name)
	ss.series[ts.name] = ts
	return nil
}

func (ss *seriesSet) get(name string) (*TimeSeries, error) {
	ts, ok := ss.series[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrNotInSession)
	}
	return ts, nil
}

func (ss *seriesSet) names() []string {
	out := make([]string, len(ss.order))
	copy(out, ss.order)
	return out
}
