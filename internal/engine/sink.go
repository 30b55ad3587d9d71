package engine

// Sink is the external audio output the session drives. Implementations
// wrap whatever actually makes sound (an HTML audio element behind a
// bridge, a local player process, a cast target). Commands are
// fire-and-forget: a sink that cannot comply (e.g. an autoplay policy
// rejecting the first Play) returns an error that the session logs and
// swallows; session state still advances and the next Play retries.
type Sink interface {
	// Load prepares a track without starting it.
	Load(t Track) error

	// Play starts or resumes the loaded track.
	Play() error

	// Pause halts output, keeping position.
	Pause() error

	// Stop halts output and discards the loaded track.
	Stop() error
}

// NopSink discards all commands. Used when no audio output is attached.
type NopSink struct{}

func (NopSink) Load(Track) error { return nil }
func (NopSink) Play() error      { return nil }
func (NopSink) Pause() error     { return nil }
func (NopSink) Stop() error      { return nil }
