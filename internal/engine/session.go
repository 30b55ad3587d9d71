package engine

import "log/slog"

// Session owns the single audio channel's transport state. It is the only
// component permitted to issue commands to the Sink, and it only does so in
// response to a resolved combo key or a manual transport call, never from
// raw per-tick observations. One Session exists per engine instance.
type Session struct {
	catalog Catalog
	sink    Sink
	log     *slog.Logger

	key      ComboKey
	playlist []Track
	index    int
	playing  bool
}

// NewSession returns an empty session bound to the given catalog and sink.
// A nil sink falls back to NopSink.
func NewSession(catalog Catalog, sink Sink, log *slog.Logger) *Session {
	if sink == nil {
		sink = NopSink{}
	}
	return &Session{
		catalog: catalog,
		sink:    sink,
		log:     log,
		index:   -1,
	}
}

// Select switches the session to the playlist for the given combo key.
// Selecting the key that is already current is a no-op, which is what keeps
// audio from restarting on redundant notifications. On a real change the
// playlist is resolved via the catalog fallback policy; if a track was
// playing, playback moves immediately to the new playlist's first track,
// otherwise the first track is loaded but not started.
func (s *Session) Select(key ComboKey) {
	if key == s.key {
		return
	}

	s.key = key
	s.playlist = LookupPlaylist(s.catalog, key)
	s.index = -1

	if len(s.playlist) == 0 {
		// Nothing to play for this key; go silent rather than erroring.
		if s.playing {
			s.sinkCall("stop", s.sink.Stop)
			s.playing = false
		}
		s.log.Debug("selected silent key", slog.String("key", string(key)))
		return
	}

	if s.playing {
		s.sinkCall("stop", s.sink.Stop)
		s.Advance()
		return
	}

	s.index = 0
	s.loadCurrent()
}

// Advance moves to the next track, wrapping at the end of the playlist,
// and starts it if the session is playing.
func (s *Session) Advance() {
	if len(s.playlist) == 0 {
		return
	}
	s.index = (s.index + 1) % len(s.playlist)
	s.loadCurrent()
	if s.playing {
		s.sinkCall("play", s.sink.Play)
	}
}

// Previous moves to the previous track, wrapping at the start of the
// playlist, and starts it if the session is playing.
func (s *Session) Previous() {
	if len(s.playlist) == 0 {
		return
	}
	if s.index < 0 {
		s.index = len(s.playlist) - 1
	} else {
		s.index = (s.index - 1 + len(s.playlist)) % len(s.playlist)
	}
	s.loadCurrent()
	if s.playing {
		s.sinkCall("play", s.sink.Play)
	}
}

// Play starts playback. On an empty playlist it is a no-op; if no track is
// loaded yet it starts from the playlist's first track.
func (s *Session) Play() {
	if len(s.playlist) == 0 {
		return
	}
	if s.index < 0 {
		s.index = 0
		s.loadCurrent()
	}
	s.playing = true
	s.sinkCall("play", s.sink.Play)
}

// Pause halts playback, keeping the current track and position.
func (s *Session) Pause() {
	if !s.playing {
		return
	}
	s.playing = false
	s.sinkCall("pause", s.sink.Pause)
}

// TrackEnded is called by the host when the sink reports the current track
// finished. It advances within the current playlist, looping.
func (s *Session) TrackEnded() {
	s.Advance()
}

// Key returns the current combo key ("" before the first Select).
func (s *Session) Key() ComboKey {
	return s.key
}

// IsPlaying reports whether the session considers itself playing.
func (s *Session) IsPlaying() bool {
	return s.playing
}

// TrackIndex returns the current track index, or -1 when nothing is loaded.
func (s *Session) TrackIndex() int {
	return s.index
}

// CurrentTrack returns the loaded track's metadata, if any.
func (s *Session) CurrentTrack() (Track, bool) {
	if s.index < 0 || s.index >= len(s.playlist) {
		return Track{}, false
	}
	return s.playlist[s.index], true
}

func (s *Session) loadCurrent() {
	s.sinkCall("load", func() error { return s.sink.Load(s.playlist[s.index]) })
}

// sinkCall issues a fire-and-forget command. Sink errors (e.g. autoplay
// rejection) are logged and swallowed; session state has already advanced,
// so the next Select or Play retries cleanly instead of re-deciding the
// same key.
func (s *Session) sinkCall(op string, fn func() error) {
	if err := fn(); err != nil {
		s.log.Warn("audio sink rejected command",
			slog.String("op", op),
			slog.String("error", err.Error()))
	}
}
