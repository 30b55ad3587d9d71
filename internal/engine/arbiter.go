package engine

// ArbiterState represents the channel ownership state.
type ArbiterState int

const (
	// StateIdle means no symbols are active and the channel is silent.
	StateIdle ArbiterState = iota
	// StateOwned means exactly one symbol holds the channel.
	StateOwned
)

// String returns the string representation of the state.
func (s ArbiterState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOwned:
		return "owned"
	default:
		return "unknown"
	}
}

// Arbiter decides which single symbol owns the one audio channel when a
// discrete-event producer reports potentially many concurrently-visible
// markers. Ownership is last-claimed-wins: the most recently found marker
// is the one the user is engaging with. When the owner is lost, ownership
// falls back to the lowest remaining symbol id rather than going silent,
// so the channel keeps producing audio as long as anything is visible.
type Arbiter struct {
	active map[SymbolID]bool
	owner  SymbolID
	state  ArbiterState
}

// NewArbiter returns an idle Arbiter with an empty active set.
func NewArbiter() *Arbiter {
	return &Arbiter{active: make(map[SymbolID]bool)}
}

// Present records that a symbol became visible and claims the channel for
// it. The changed result reports whether ownership moved.
func (a *Arbiter) Present(id SymbolID) (changed bool) {
	a.active[id] = true
	if a.state == StateOwned && a.owner == id {
		return false
	}
	a.owner = id
	a.state = StateOwned
	return true
}

// Absent records that a symbol was lost. If it owned the channel, ownership
// passes to the lowest remaining active symbol, or the arbiter goes idle
// when the set is empty. Losing a non-owner never moves ownership.
func (a *Arbiter) Absent(id SymbolID) (changed bool) {
	delete(a.active, id)
	if a.state != StateOwned || a.owner != id {
		return false
	}
	if len(a.active) == 0 {
		a.state = StateIdle
		a.owner = 0
		return true
	}
	a.owner = a.lowestActive()
	return true
}

// Owner returns the current channel owner, or ok=false when idle.
func (a *Arbiter) Owner() (id SymbolID, ok bool) {
	return a.owner, a.state == StateOwned
}

// State returns the current ownership state.
func (a *Arbiter) State() ArbiterState {
	return a.state
}

// ActiveCount returns the number of currently visible symbols.
func (a *Arbiter) ActiveCount() int {
	return len(a.active)
}

func (a *Arbiter) lowestActive() SymbolID {
	first := true
	var lowest SymbolID
	for id := range a.active {
		if first || id < lowest {
			lowest = id
			first = false
		}
	}
	return lowest
}
