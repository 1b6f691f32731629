package remote_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-nwb/nwb"
	"github.com/robert-malhotra/go-nwb/remote"
)

// Streaming a session file over HTTP: only the ranges backing the metadata
// and the requested rows are fetched.
func TestStreamSessionFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := nwb.NewSession("STREAM", "served over http", time.Date(2021, 3, 16, 10, 0, 0, 0, time.UTC))
	ts, err := nwb.NewTimeSeries("raw", nwb.NewArray([]float64{1, 2, 3, 4, 5, 6}, 3, 2), "volts",
		nwb.WithTimestamps([]float64{0, 0.1, 0.2}))
	require.NoError(t, err)
	require.NoError(t, s.AddAcquisition(ts))
	require.NoError(t, nwb.Write(filepath.Join(dir, "session.nwb"), s))

	srv := httptest.NewServer(http.FileServer(http.Dir(dir)))
	defer srv.Close()

	r, err := remote.Open(context.Background(), srv.URL+"/session.nwb",
		remote.WithBlockSize(4096))
	require.NoError(t, err)

	f, err := nwb.OpenReaderAt(r, "session.nwb")
	require.NoError(t, err)
	defer f.Close()

	got, err := f.Read()
	require.NoError(t, err)
	assert.Equal(t, "STREAM", got.Identifier())

	raw, err := got.Acquisition("raw")
	require.NoError(t, err)
	row, err := raw.Data().Rows(1, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 4}, row)
}
