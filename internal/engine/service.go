package engine

import (
	"errors"
	"log/slog"
	"sync"
)

// Mode selects which producer drives the engine. A deployment uses exactly
// one: ranking ticks and discrete events are alternative drivers of the
// same session, never combined.
type Mode string

const (
	// ModeRanked consumes ranked-observation ticks through the debouncer.
	ModeRanked Mode = "ranked"
	// ModeEvents consumes discrete found/lost events through the arbiter.
	ModeEvents Mode = "events"
)

// ParseMode returns the Mode for s, defaulting to ModeRanked for
// unrecognized values.
func ParseMode(s string) Mode {
	if Mode(s) == ModeEvents {
		return ModeEvents
	}
	return ModeRanked
}

var (
	// ErrWrongMode is returned when an operation belonging to the other
	// producer model is invoked.
	ErrWrongMode = errors.New("operation not available in this engine mode")

	// ErrUnknownSymbol is returned for events naming a symbol id the
	// catalog does not define.
	ErrUnknownSymbol = errors.New("unknown symbol id")
)

// Engine wires the debouncer, arbiter, and session into one instance and
// serializes all operations behind a mutex. The source events arrive from a
// concurrent HTTP host, so the lock is what provides the "one logical event
// queue" ordering the components assume: each tick's effect on stable state
// is visible before the next tick is processed.
type Engine struct {
	mu       sync.Mutex
	mode     Mode
	debounce *Debouncer
	arbiter  *Arbiter
	session  *Session
	catalog  Catalog
	log      *slog.Logger
}

// Options are the engine tunables. Zero values fall back to defaults.
type Options struct {
	Mode           Mode
	WindowSize     int     // debounce window capacity, default 8
	AgreementRatio float64 // quorum fraction, default 0.6
	Sink           Sink    // audio output, default NopSink
}

// New constructs an Engine with its own debounce windows, active set, and
// playback session. Instances share nothing; hosts that want isolation
// construct one engine each.
func New(catalog Catalog, log *slog.Logger, opts Options) *Engine {
	return &Engine{
		mode:     ParseMode(string(opts.Mode)),
		debounce: NewDebouncer(opts.WindowSize, opts.AgreementRatio),
		arbiter:  NewArbiter(),
		session:  NewSession(catalog, opts.Sink, log),
		catalog:  catalog,
		log:      log,
	}
}

// Mode returns the configured producer mode.
func (e *Engine) Mode() Mode {
	return e.mode
}

// IngestTick processes one ranked-observation tick: entries with empty
// labels are dropped as absence, the remainder feed the debouncer, and a
// stable-state change re-selects the session's playlist. The returned key
// is the current combo key after the tick; changed reports whether it
// moved.
func (e *Engine) IngestTick(tick []RankedObservation) (key ComboKey, changed bool, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.mode != ModeRanked {
		return "", false, ErrWrongMode
	}

	filtered := tick[:0:0]
	for _, obs := range tick {
		if obs.Label == "" {
			continue
		}
		filtered = append(filtered, obs)
	}

	e.debounce.Observe(filtered)
	state, stableChanged := e.debounce.CurrentStable()
	if stableChanged {
		key = ResolveState(state)
		prev := e.session.Key()
		e.session.Select(key)
		changed = key != prev
		if changed {
			e.log.Info("combo key changed",
				slog.String("key", string(key)),
				slog.String("slot_a", string(state.SlotA)),
				slog.String("slot_b", string(state.SlotB)))
		}
	}
	return e.session.Key(), changed, nil
}

// MarkerFound processes a discrete presence event. The found symbol claims
// the channel (last-claimed-wins) and the session switches to its playlist.
func (e *Engine) MarkerFound(id SymbolID) (changed bool, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.mode != ModeEvents {
		return false, ErrWrongMode
	}
	if _, ok := e.catalog.SymbolLabel(id); !ok {
		return false, ErrUnknownSymbol
	}

	if e.arbiter.Present(id) {
		e.selectOwnerLocked()
		return true, nil
	}
	return false, nil
}

// MarkerLost processes a discrete absence event. Losing the owner hands the
// channel to the lowest remaining active symbol, or to the default playlist
// when nothing is left visible.
func (e *Engine) MarkerLost(id SymbolID) (changed bool, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.mode != ModeEvents {
		return false, ErrWrongMode
	}
	if _, ok := e.catalog.SymbolLabel(id); !ok {
		return false, ErrUnknownSymbol
	}

	if e.arbiter.Absent(id) {
		e.selectOwnerLocked()
		return true, nil
	}
	return false, nil
}

// selectOwnerLocked re-selects the session for the arbiter's current owner.
// Caller must hold e.mu.
func (e *Engine) selectOwnerLocked() {
	owner, ok := e.arbiter.Owner()
	if !ok {
		e.session.Select(DefaultKey)
		e.log.Info("channel released", slog.String("key", string(DefaultKey)))
		return
	}
	label, _ := e.catalog.SymbolLabel(owner)
	key := Resolve(label, "")
	e.session.Select(key)
	e.log.Info("channel owner changed",
		slog.Int("owner", int(owner)),
		slog.String("key", string(key)))
}

// Play starts playback of the current playlist.
func (e *Engine) Play() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session.Play()
}

// Pause halts playback.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session.Pause()
}

// Next advances to the next track.
func (e *Engine) Next() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session.Advance()
}

// Previous moves to the previous track.
func (e *Engine) Previous() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session.Previous()
}

// TrackEnded advances the session when the sink reports end of track.
func (e *Engine) TrackEnded() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session.TrackEnded()
}

// ComboKey returns the session's current canonical key.
func (e *Engine) ComboKey() ComboKey {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Key()
}

// ActiveOwner returns the arbiter's current channel owner, if any.
func (e *Engine) ActiveOwner() (SymbolID, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.arbiter.Owner()
}

// ActiveMarkerCount returns the number of currently visible markers.
// Used for metrics.
func (e *Engine) ActiveMarkerCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.arbiter.ActiveCount()
}

// IsPlaying reports whether the session is playing.
func (e *Engine) IsPlaying() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.IsPlaying()
}

// Snapshot is a point-in-time view of the engine for debug/UI surfaces.
type Snapshot struct {
	Mode          Mode      `json:"mode"`
	ComboKey      ComboKey  `json:"combo_key"`
	Owner         *SymbolID `json:"owner,omitempty"`
	ActiveMarkers int       `json:"active_markers"`
	Playing       bool      `json:"playing"`
	TrackIndex    int       `json:"track_index"`
	Track         *Track    `json:"track,omitempty"`
}

// CurrentSnapshot returns a consistent snapshot of mode, key, ownership,
// and transport state.
func (e *Engine) CurrentSnapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := Snapshot{
		Mode:          e.mode,
		ComboKey:      e.session.Key(),
		ActiveMarkers: e.arbiter.ActiveCount(),
		Playing:       e.session.IsPlaying(),
		TrackIndex:    e.session.TrackIndex(),
	}
	if owner, ok := e.arbiter.Owner(); ok {
		snap.Owner = &owner
	}
	if tr, ok := e.session.CurrentTrack(); ok {
		snap.Track = &tr
	}
	return snap
}
