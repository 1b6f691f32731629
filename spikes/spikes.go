// Package spikes aligns unit spike times to stimulus events and summarizes
// the aligned offsets.
//
// Alignment follows the usual peristimulus convention: for each event onset,
// the spikes falling inside a window around the onset are collected and
// re-expressed as offsets relative to it, so spikes before the onset come out
// negative.
package spikes

import (
	"fmt"
	"math"
	"sort"

	"github.com/DataDog/sketches-go/ddsketch"
)

// Window is the alignment window around each event onset, in seconds. Both
// bounds are non-negative; Before extends into the past.
type Window struct {
	Before float64
	After  float64
}

// Align collects, for each onset, the spike times strictly inside the window
// (both bounds exclusive) and returns them as offsets relative to the onset.
// spikeTimes must be sorted ascending; onsets may be in any order. The result
// has one slice per onset, empty slices included.
func Align(spikeTimes, onsets []float64, w Window) ([][]float64, error) {
	if w.Before < 0 || w.After < 0 {
		return nil, fmt.Errorf("window bounds must be non-negative, got [-%g, +%g]", w.Before, w.After)
	}
	if !sort.Float64sAreSorted(spikeTimes) {
		return nil, fmt.Errorf("spike times are not sorted")
	}

	aligned := make([][]float64, len(onsets))
	for i, onset := range onsets {
		lo := onset - w.Before
		hi := onset + w.After

		start := sort.Search(len(spikeTimes), func(j int) bool { return spikeTimes[j] > lo })
		offsets := []float64{}
		for j := start; j < len(spikeTimes) && spikeTimes[j] < hi; j++ {
			offsets = append(offsets, spikeTimes[j]-onset)
		}
		aligned[i] = offsets
	}
	return aligned, nil
}

// Summary describes the distribution of aligned spike offsets across events.
type Summary struct {
	// Events is the number of onsets the spikes were aligned to.
	Events int
	// Count is the total number of aligned spikes.
	Count int64
	// Mean spike count per event.
	SpikesPerEvent float64
	// Min and Max aligned offset, in seconds.
	Min float64
	Max float64
	// Quantiles of the aligned offsets, keyed by quantile (e.g. 0.5).
	Quantiles map[float64]float64
}

// relativeAccuracy for the quantile sketch; 1% matches what the offsets are
// good for once alignment jitter is accounted for.
const relativeAccuracy = 0.01

// Summarize computes a distribution summary of the aligned offsets. The
// quantiles are approximate, computed with a DDSketch. An empty alignment
// yields a Summary with Count 0 and no quantiles.
func Summarize(aligned [][]float64, quantiles []float64) (*Summary, error) {
	for _, q := range quantiles {
		if q < 0 || q > 1 {
			return nil, fmt.Errorf("quantile %g out of range [0, 1]", q)
		}
	}

	sketch, err := ddsketch.NewDefaultDDSketch(relativeAccuracy)
	if err != nil {
		return nil, fmt.Errorf("creating sketch: %w", err)
	}

	s := &Summary{
		Events: len(aligned),
		Min:    math.MaxFloat64,
		Max:    -math.MaxFloat64,
	}
	for _, offsets := range aligned {
		for _, v := range offsets {
			s.Count++
			if v < s.Min {
				s.Min = v
			}
			if v > s.Max {
				s.Max = v
			}
			if err := sketch.Add(v); err != nil {
				return nil, fmt.Errorf("adding offset %g: %w", v, err)
			}
		}
	}

	if s.Count == 0 {
		s.Min, s.Max = 0, 0
		return s, nil
	}
	if s.Events > 0 {
		s.SpikesPerEvent = float64(s.Count) / float64(s.Events)
	}

	s.Quantiles = make(map[float64]float64, len(quantiles))
	for _, q := range quantiles {
		v, err := sketch.GetValueAtQuantile(q)
		if err != nil {
			return nil, fmt.Errorf("quantile %g: %w", q, err)
		}
		s.Quantiles[q] = v
	}
	return s, nil
}
