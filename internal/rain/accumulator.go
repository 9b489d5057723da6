package rain

import "time"

// TipSource is the one-way coupling between the accumulator and the edge
// handler: a counter that only ever goes up.
type TipSource interface {
	Count() uint64
}

// Accumulator derives daily rainfall from the never-resetting tip count.
// It is called only from the main loop; the tip count may advance at any
// moment, including between two reads within the same Update call, which
// is safe because the accumulator only ever compares against its own last
// snapshot.
type Accumulator struct {
	tips     TipSource
	mmPerTip float64

	snapshot uint64  // tip count as of the last accrual
	baseline uint64  // tip count as of the last rollover (or startup)
	daily    float64 // mm since the last rollover
	lastDay  int     // day of month, 0 until the first Update
}

// NewAccumulator creates an accumulator reading from the given tip source.
// mmPerTip is the gauge calibration: millimeters of rainfall per bucket tip.
func NewAccumulator(tips TipSource, mmPerTip float64) *Accumulator {
	return &Accumulator{tips: tips, mmPerTip: mmPerTip}
}

// Update advances the daily total to reflect tips observed since the last
// call, resetting it when the calendar day has changed.
//
// On the first ever call the current day is recorded and no rollover logic
// runs. On a day change the counter is snapshotted and the total reset, so
// tips that landed between the last call and the rollover are discarded
// with the old day rather than credited to the new one. If Update is not
// called across several day boundaries only one rollover is detected.
func (a *Accumulator) Update(now time.Time) {
	day := now.Day()
	if a.lastDay == 0 {
		a.lastDay = day
	} else if day != a.lastDay {
		a.snapshot = a.tips.Count()
		a.baseline = a.snapshot
		a.daily = 0
		a.lastDay = day
	}

	count := a.tips.Count()
	if count > a.snapshot {
		a.daily += float64(count-a.snapshot) * a.mmPerTip
		a.snapshot = count
	}
}

// Total returns the accumulated rainfall in millimeters since the last day
// rollover (or startup).
func (a *Accumulator) Total() float64 {
	return a.daily
}

// Tips returns the number of tips credited to the current day.
func (a *Accumulator) Tips() uint64 {
	return a.snapshot - a.baseline
}

// Started reports whether Update has been called at least once, i.e. the
// accumulator is tracking a day.
func (a *Accumulator) Started() bool {
	return a.lastDay != 0
}
