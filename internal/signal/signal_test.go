package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRangeInvertedExtremes(t *testing.T) {
	r := NewRange()
	assert.Equal(t, MaxRaw, r.Low)
	assert.Equal(t, MinRaw, r.High)
	assert.False(t, r.Valid())
}

func TestRangeValid(t *testing.T) {
	assert.True(t, Range{Low: 100, High: 900}.Valid())
	assert.False(t, Range{Low: 500, High: 500}.Valid(), "zero extent is not valid")
	assert.False(t, Range{Low: 900, High: 100}.Valid(), "negative extent is not valid")
}

func TestDeriveThresholdsReference(t *testing.T) {
	// median=500, extent=800, halfBand=min(200,40)=40
	thr := DeriveThresholds(Range{Low: 100, High: 900})
	assert.Equal(t, Thresholds{Low: 460, High: 540}, thr)
}

func TestDeriveThresholdsSmallExtent(t *testing.T) {
	// extent=80 stays under the cap: halfBand=80/4=20
	thr := DeriveThresholds(Range{Low: 500, High: 580})
	assert.Equal(t, Thresholds{Low: 520, High: 560}, thr)
}

func TestDeriveThresholdsMedianRoundsDown(t *testing.T) {
	// (100+901)/2 = 500 (integer division), extent=801, halfBand=40
	thr := DeriveThresholds(Range{Low: 100, High: 901})
	assert.Equal(t, Thresholds{Low: 460, High: 540}, thr)
}

func TestDeriveThresholdsBandInsideRange(t *testing.T) {
	cases := []Range{
		{Low: 0, High: 1023},
		{Low: 10, High: 30},
		{Low: 400, High: 600},
		{Low: 0, High: 1},
	}
	for _, r := range cases {
		thr := DeriveThresholds(r)
		median := (r.Low + r.High) / 2
		assert.LessOrEqual(t, thr.Low, median, "range %+v", r)
		assert.GreaterOrEqual(t, thr.High, median, "range %+v", r)
		assert.LessOrEqual(t, thr.High-thr.Low, 2*deadBandCap, "range %+v", r)
	}
}

func TestDeriveThresholdsDegenerateClamps(t *testing.T) {
	// Untouched sampler range: extent is negative, half-band clamps to zero
	// instead of producing an inverted pair. Quality is undefined — Valid()
	// is what callers must check.
	r := NewRange()
	thr := DeriveThresholds(r)
	assert.Equal(t, thr.Low, thr.High)

	pinned := Range{Low: 512, High: 512}
	assert.Equal(t, Thresholds{Low: 512, High: 512}, DeriveThresholds(pinned))
}

func TestDeriveThresholdsIdempotent(t *testing.T) {
	r := Range{Low: 37, High: 811}
	first := DeriveThresholds(r)
	second := DeriveThresholds(r)
	require.Equal(t, first, second)
}

func TestRangeSamplerNarrowing(t *testing.T) {
	s := NewRangeSampler()

	assert.True(t, s.Observe(500), "first sample moves both bounds")
	assert.Equal(t, Range{Low: 500, High: 500}, s.Range())

	assert.True(t, s.Observe(100), "lower sample lowers the low bound")
	assert.True(t, s.Observe(900), "higher sample raises the high bound")
	assert.Equal(t, Range{Low: 100, High: 900}, s.Range())

	assert.False(t, s.Observe(500), "in-range sample moves nothing")
	assert.False(t, s.Observe(100), "equal to a bound moves nothing")
	assert.Equal(t, Range{Low: 100, High: 900}, s.Range())
}

func TestRangeSamplerNeverRun(t *testing.T) {
	s := NewRangeSampler()
	assert.False(t, s.Range().Valid())
}
