package engine

// DefaultWindowSize is the default debounce window capacity per slot.
const DefaultWindowSize = 8

// DefaultAgreementRatio is the default fraction of a window that must agree
// on one label before it is declared stable.
const DefaultAgreementRatio = 0.6

// window is a bounded FIFO of recent per-tick labels for one slot.
// An empty Label means "nothing observed this tick".
type window struct {
	entries []Label
	pos     int
	filled  int
}

func newWindow(n int) *window {
	return &window{entries: make([]Label, n)}
}

// push records one tick's value, evicting the oldest once at capacity.
func (w *window) push(v Label) {
	w.entries[w.pos] = v
	w.pos = (w.pos + 1) % len(w.entries)
	if w.filled < len(w.entries) {
		w.filled++
	}
}

// vote returns the most frequent non-empty label and its count, scanning
// oldest to newest. Ties resolve to the label encountered first, so the
// result is deterministic for a given history.
func (w *window) vote() (Label, int) {
	counts := make(map[Label]int, w.filled)
	order := make([]Label, 0, w.filled)
	for i := 0; i < w.filled; i++ {
		v := w.entries[(w.pos-w.filled+i+len(w.entries))%len(w.entries)]
		if v == "" {
			continue
		}
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	var best Label
	bestCount := 0
	for _, v := range order {
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best, bestCount
}

// StableState is the debouncer's current output: up to two stable labels.
// An empty Label means the slot has no stable value.
type StableState struct {
	SlotA Label
	SlotB Label
}

// Debouncer suppresses flicker in per-tick classifier output by majority
// voting over a sliding window per slot. Downstream logic only reacts once
// a quorum of recent observations agree, so a single noisy frame can never
// change what is playing.
type Debouncer struct {
	slotA *window
	slotB *window
	size  int
	ratio float64
	prev  StableState
}

// NewDebouncer returns a Debouncer with the given window capacity and
// agreement ratio. Non-positive size and out-of-range ratio fall back to
// DefaultWindowSize and DefaultAgreementRatio.
func NewDebouncer(size int, ratio float64) *Debouncer {
	if size <= 0 {
		size = DefaultWindowSize
	}
	if ratio <= 0 || ratio > 1 {
		ratio = DefaultAgreementRatio
	}
	return &Debouncer{
		slotA: newWindow(size),
		slotB: newWindow(size),
		size:  size,
		ratio: ratio,
	}
}

// Observe records one tick. The top-ranked label goes to slot A's window
// and the second-ranked to slot B's; missing entries are recorded as
// absence. Observations beyond the first two are ignored.
func (d *Debouncer) Observe(tick []RankedObservation) {
	var a, b Label
	if len(tick) > 0 {
		a = tick[0].Label
	}
	if len(tick) > 1 {
		b = tick[1].Label
	}
	d.slotA.push(a)
	d.slotB.push(b)
}

// CurrentStable computes each slot's stable value: the most frequent label
// in the window, provided its count reaches ratio x capacity. The quorum
// denominator is the configured capacity even while the window is still
// filling, so no value can stabilize before enough evidence exists.
// The changed result reports whether either slot differs from the previous
// call.
func (d *Debouncer) CurrentStable() (state StableState, changed bool) {
	quorum := d.ratio * float64(d.size)
	state = StableState{
		SlotA: stableValue(d.slotA, quorum),
		SlotB: stableValue(d.slotB, quorum),
	}
	changed = state != d.prev
	d.prev = state
	return state, changed
}

func stableValue(w *window, quorum float64) Label {
	v, count := w.vote()
	if float64(count) >= quorum {
		return v
	}
	return ""
}
