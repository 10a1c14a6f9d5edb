// Package signal contains the pure signal-conditioning logic for the
// light-interruption sensor: observed-range tracking, dead-band threshold
// derivation, and the hysteresis comparator.
// This package has NO external dependencies (no ADC, GPIO, MQTT, OS, or
// time.Sleep), so every state machine can be driven by a test harness with
// scripted samples instead of real hardware.
package signal

// Raw sample domain of the 10-bit ADC.
const (
	MinRaw = 0
	MaxRaw = 1023
)

// Dead-band sizing: a quarter of the observed extent, capped in raw units.
// The cap keeps a wide calibration sweep from swallowing the whole signal;
// the fraction keeps a narrow sweep from producing a band thinner than the
// sensor's own jitter.
const (
	deadBandDivisor = 4
	deadBandCap     = 40
)

// Level is the debounced logical state of the sensor.
type Level string

const (
	LevelHigh Level = "HIGH" // light blocked by the interrupter
	LevelLow  Level = "LOW"  // light reaching the sensor
)

// Range is the raw-sample range observed during calibration.
type Range struct {
	Low  int
	High int
}

// NewRange returns a Range initialized to the inverted extremes, so that any
// real sample narrows it.
func NewRange() Range {
	return Range{Low: MaxRaw, High: MinRaw}
}

// Extent returns the width of the observed range.
func (r Range) Extent() int {
	return r.High - r.Low
}

// Valid reports whether the range describes real observed variation.
// A range still at its inverted-extreme initial values means the sampler
// never ran or the source was pinned; thresholds derived from it are
// meaningless and callers must not start timing with them.
func (r Range) Valid() bool {
	return r.Extent() > 0
}

// Thresholds is the dead-band pair derived from an observed range.
// A sample at or below Low drives the comparator LOW; at or above High drives
// it HIGH; strictly in between, the previous state holds.
type Thresholds struct {
	Low  int
	High int
}

// DeriveThresholds computes the hysteresis dead band for an observed range:
// median ± half-band, where the half-band is the lesser of a quarter of the
// extent and the fixed cap. Pure function; all arithmetic stays in the raw
// integer domain. For a degenerate range (extent <= 0) the half-band clamps
// to zero rather than going negative — callers should reject such ranges via
// Range.Valid before use.
func DeriveThresholds(r Range) Thresholds {
	median := (r.Low + r.High) / 2
	halfBand := r.Extent() / deadBandDivisor
	if halfBand > deadBandCap {
		halfBand = deadBandCap
	}
	if halfBand < 0 {
		halfBand = 0
	}
	return Thresholds{Low: median - halfBand, High: median + halfBand}
}
