package tui_test

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-nwb/nwb"
	"github.com/robert-malhotra/go-nwb/tui"
)

// fixtureTree writes a small session file and builds its tree.
func fixtureTree(t *testing.T) *tui.Node {
	t.Helper()

	s := nwb.NewSession("TUI", "browser fixture", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	ts, err := nwb.NewTimeSeries("raw", nwb.NewArray([]float64{1, 2, 3, 4}, 2, 2), "volts",
		nwb.WithTimestamps([]float64{0, 0.1}))
	require.NoError(t, err)
	require.NoError(t, s.AddAcquisition(ts))

	path := filepath.Join(t.TempDir(), "fixture.nwb")
	require.NoError(t, nwb.Write(path, s))

	f, err := nwb.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })

	root, err := tui.BuildTree(f.Container())
	require.NoError(t, err)
	return root
}

func keyRunes(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// updateModel sends a message and returns the updated Model.
func updateModel(t *testing.T, m tui.Model, msg tea.Msg) tui.Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(tui.Model)
	require.True(t, ok)
	return model
}

func TestBuildTree(t *testing.T) {
	t.Parallel()

	root := fixtureTree(t)
	assert.Equal(t, tui.GroupNode, root.Kind)
	require.NotEmpty(t, root.Children)

	names := make([]string, 0, len(root.Children))
	for _, c := range root.Children {
		names = append(names, c.Name)
	}
	assert.Contains(t, names, "acquisition")
	assert.Contains(t, names, "stimulus")
}

func TestNavigation(t *testing.T) {
	t.Parallel()

	m := tui.New("fixture.nwb", fixtureTree(t))
	m = updateModel(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})

	// Root is selected initially
	assert.Equal(t, "/", m.Selected().Name)

	m = updateModel(t, m, keyRunes('j'))
	first := m.Selected()
	assert.NotEqual(t, "/", first.Name)

	m = updateModel(t, m, keyRunes('k'))
	assert.Equal(t, "/", m.Selected().Name)

	// Cursor does not move past the top
	m = updateModel(t, m, keyRunes('k'))
	assert.Equal(t, "/", m.Selected().Name)
}

func TestExpandCollapse(t *testing.T) {
	t.Parallel()

	m := tui.New("fixture.nwb", fixtureTree(t))
	m = updateModel(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})

	// Move to the acquisition group
	for m.Selected().Name != "acquisition" {
		m = updateModel(t, m, keyRunes('j'))
	}

	// Expand: the series group becomes visible right below
	m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = updateModel(t, m, keyRunes('j'))
	assert.Equal(t, "raw", m.Selected().Name)

	// Collapse: the series group disappears from the visible rows
	m = updateModel(t, m, keyRunes('k'))
	m = updateModel(t, m, keyRunes('h'))
	m = updateModel(t, m, keyRunes('j'))
	assert.NotEqual(t, "raw", m.Selected().Name)
}

func TestView(t *testing.T) {
	t.Parallel()

	m := tui.New("fixture.nwb", fixtureTree(t))
	m = updateModel(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	out := m.View()
	assert.Contains(t, out, "fixture.nwb")
	assert.Contains(t, out, "acquisition")
	assert.Contains(t, out, "identifier = TUI")
}

func TestBrowser_Teatest(t *testing.T) {
	t.Parallel()

	m := tui.New("fixture.nwb", fixtureTree(t))

	tm := teatest.NewTestModel(t, m,
		teatest.WithInitialTermSize(100, 30),
	)

	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("acquisition")) &&
			bytes.Contains(out, []byte("fixture.nwb"))
	}, teatest.WithDuration(5*time.Second))

	tm.Send(keyRunes('q'))
	tm.WaitFinished(t, teatest.WithFinalTimeout(5*time.Second))
}
