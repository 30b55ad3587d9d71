package engine

// SymbolID identifies a trackable physical marker in the discrete-event
// producer model (e.g. one face of a tracked object).
type SymbolID int

// Label is the human-readable name of a marker class in the
// ranked-observation producer model (e.g. "Happy").
type Label string

// ComboKey is the canonical, order-independent key identifying the current
// set of active symbols. It is always derived via Resolve and never
// hand-assembled by callers.
type ComboKey string

const (
	// KeyDelimiter joins the two components of a combo key.
	KeyDelimiter = "|"

	// NoneMarker fills the second component when only one symbol is stable.
	NoneMarker = "—"

	// DefaultKey is the reserved key used when no symbol is stable, or when
	// lookup of a computed key fails entirely.
	DefaultKey ComboKey = "default"
)

// RankedObservation is one entry of a ranked-observation tick: a marker
// label with the producer's confidence in [0,1]. The producer pre-filters
// against its own threshold and truncates to at most two entries.
// This also matches the input JSON payload for the tick endpoint.
type RankedObservation struct {
	Label      Label   `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Track is one playable entry of a playlist.
type Track struct {
	Title  string `json:"title" yaml:"title"`
	Artist string `json:"artist" yaml:"artist"`
	Source string `json:"source" yaml:"source"`
}
