package nwb_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-nwb/nwb"
)

func TestNewTimeSeries(t *testing.T) {
	t.Parallel()

	t.Run("timestamps time base", func(t *testing.T) {
		t.Parallel()
		ts, err := nwb.NewTimeSeries("raw", nwb.NewArray([]float64{1, 2, 3}), "volts",
			nwb.WithTimestamps([]float64{0, 0.1, 0.2}),
			nwb.WithDescription("membrane potential"))
		require.NoError(t, err)
		assert.Equal(t, "raw", ts.Name())
		assert.Equal(t, "volts", ts.Unit())
		assert.Equal(t, "membrane potential", ts.Description())
		assert.NotNil(t, ts.Timestamps())
	})

	t.Run("rate time base", func(t *testing.T) {
		t.Parallel()
		ts, err := nwb.NewTimeSeries("raw", nwb.NewArray([]float64{1, 2, 3}), "volts",
			nwb.WithRate(0.5, 10.0))
		require.NoError(t, err)
		assert.Nil(t, ts.Timestamps())
		assert.Equal(t, 0.5, ts.StartingTime())
		assert.Equal(t, 10.0, ts.Rate())
	})

	t.Run("missing time base", func(t *testing.T) {
		t.Parallel()
		_, err := nwb.NewTimeSeries("raw", nwb.NewArray([]float64{1, 2, 3}), "volts")
		assert.ErrorIs(t, err, nwb.ErrNoTimeBase)
	})

	t.Run("timestamps length mismatch", func(t *testing.T) {
		t.Parallel()
		_, err := nwb.NewTimeSeries("raw", nwb.NewArray([]float64{1, 2, 3}), "volts",
			nwb.WithTimestamps([]float64{0, 0.1}))
		assert.ErrorIs(t, err, nwb.ErrLengthMismatch)
	})

	t.Run("timestamps match leading dimension of 2D data", func(t *testing.T) {
		t.Parallel()
		data := nwb.NewArray([]float64{1, 2, 3, 4, 5, 6}, 3, 2)
		_, err := nwb.NewTimeSeries("raw", data, "volts",
			nwb.WithTimestamps([]float64{0, 0.1, 0.2}))
		assert.NoError(t, err)
	})
}

func TestSessionSeriesSets(t *testing.T) {
	t.Parallel()

	s := nwb.NewSession("sess-1", "test session", time.Now())

	ts1, err := nwb.NewTimeSeries("a", nwb.NewArray([]float64{1}), "volts", nwb.WithRate(0, 1))
	require.NoError(t, err)
	ts2, err := nwb.NewTimeSeries("b", nwb.NewArray([]float64{2}), "volts", nwb.WithRate(0, 1))
	require.NoError(t, err)

	require.NoError(t, s.AddAcquisition(ts1))
	require.NoError(t, s.AddAcquisition(ts2))
	assert.Equal(t, []string{"a", "b"}, s.AcquisitionNames())

	// Duplicate names are rejected per category
	err = s.AddAcquisition(ts1)
	assert.ErrorIs(t, err, nwb.ErrDuplicateName)

	// A stimulus may share a name with an acquisition
	require.NoError(t, s.AddStimulus(ts1))

	got, err := s.Acquisition("a")
	require.NoError(t, err)
	assert.Equal(t, ts1, got)

	_, err = s.Acquisition("missing")
	assert.ErrorIs(t, err, nwb.ErrNotInSession)
}

func TestDynamicTable(t *testing.T) {
	t.Parallel()

	tbl := nwb.NewDynamicTable("trials", "per-trial metadata")
	require.NoError(t, tbl.AddFloatColumn("start_time", "", []float64{0, 1, 2}))
	require.NoError(t, tbl.AddStringColumn("outcome", "", []string{"hit", "miss", "hit"}))
	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, []string{"start_time", "outcome"}, tbl.ColumnNames())

	// Row count mismatch
	err := tbl.AddFloatColumn("bad", "", []float64{1, 2})
	assert.Error(t, err)

	// Duplicate column
	err = tbl.AddFloatColumn("outcome", "", []float64{1, 2, 3})
	assert.ErrorIs(t, err, nwb.ErrDuplicateName)
}

func TestUnits(t *testing.T) {
	t.Parallel()

	spikes := [][]float64{
		{0.1, 0.5, 0.9},
		{},
		{1.2},
	}
	u, err := nwb.NewUnits("sorted units", spikes)
	require.NoError(t, err)
	assert.Equal(t, 3, u.Len())
	assert.Equal(t, []float64{0.1, 0.5, 0.9}, u.SpikeTimes(0))
	assert.Empty(t, u.SpikeTimes(1))
	assert.Equal(t, []float64{1.2}, u.SpikeTimes(2))
}
