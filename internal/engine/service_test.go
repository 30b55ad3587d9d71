package engine

import (
	"errors"
	"testing"
)

func newRankedEngine(t *testing.T, sink Sink) *Engine {
	t.Helper()
	return New(testCatalog(), testLogger(), Options{
		Mode:           ModeRanked,
		WindowSize:     8,
		AgreementRatio: 0.6,
		Sink:           sink,
	})
}

func newEventEngine(t *testing.T) *Engine {
	t.Helper()
	return New(testCatalog(), testLogger(), Options{Mode: ModeEvents})
}

func TestEngine_ranked_happy_scenario(t *testing.T) {
	sink := &fakeSink{}
	e := newRankedEngine(t, sink)

	// Slot A sees "Happy" for 6 of 8 ticks, slot B nothing.
	var key ComboKey
	for i := 0; i < 8; i++ {
		tick := []RankedObservation{{Label: "Happy", Confidence: 0.9}}
		if i >= 6 {
			tick = nil
		}
		var err error
		key, _, err = e.IngestTick(tick)
		if err != nil {
			t.Fatalf("IngestTick: %v", err)
		}
	}

	if key != "Happy|—" {
		t.Errorf("expected combo key Happy|—, got %q", key)
	}
	if e.IsPlaying() {
		t.Error("engine should not auto-play before Play is called")
	}

	snap := e.CurrentSnapshot()
	if snap.Track == nil || snap.Track.Title != "Sunny Side" {
		t.Errorf("expected first track of Happy|— loaded, got %+v", snap.Track)
	}

	e.Play()
	if !e.IsPlaying() || sink.playCalls != 1 {
		t.Errorf("expected playback started: playing=%v calls=%d", e.IsPlaying(), sink.playCalls)
	}
}

func TestEngine_ranked_redundant_ticks_keep_continuity(t *testing.T) {
	sink := &fakeSink{}
	e := newRankedEngine(t, sink)

	for i := 0; i < 20; i++ {
		_, _, _ = e.IngestTick([]RankedObservation{{Label: "Happy", Confidence: 0.9}})
	}
	e.Play()
	loadsBefore := len(sink.loaded)

	// More of the same: stable state is unchanged, playback must not restart.
	for i := 0; i < 20; i++ {
		_, changed, _ := e.IngestTick([]RankedObservation{{Label: "Happy", Confidence: 0.9}})
		if changed {
			t.Fatal("steady input should not change the combo key")
		}
	}
	if len(sink.loaded) != loadsBefore {
		t.Error("steady input should not reload tracks")
	}
}

func TestEngine_ranked_malformed_entries_treated_as_absence(t *testing.T) {
	e := newRankedEngine(t, nil)

	for i := 0; i < 8; i++ {
		_, _, err := e.IngestTick([]RankedObservation{
			{Label: "", Confidence: 0.9},
			{Label: "Happy", Confidence: 0.8},
		})
		if err != nil {
			t.Fatalf("IngestTick: %v", err)
		}
	}

	// The empty label is dropped, so "Happy" ranks first and stabilizes
	// in slot A.
	if key := e.ComboKey(); key != "Happy|—" {
		t.Errorf("expected Happy|—, got %q", key)
	}
}

func TestEngine_ranked_rejects_marker_events(t *testing.T) {
	e := newRankedEngine(t, nil)
	if _, err := e.MarkerFound(0); !errors.Is(err, ErrWrongMode) {
		t.Errorf("expected ErrWrongMode, got %v", err)
	}
	if _, err := e.MarkerLost(0); !errors.Is(err, ErrWrongMode) {
		t.Errorf("expected ErrWrongMode, got %v", err)
	}
}

func TestEngine_events_owner_sequence(t *testing.T) {
	e := newEventEngine(t)

	if _, err := e.MarkerFound(0); err != nil {
		t.Fatal(err)
	}
	if owner, ok := e.ActiveOwner(); !ok || owner != 0 {
		t.Fatalf("expected owner 0, got %d ok=%v", owner, ok)
	}
	if key := e.ComboKey(); key != "Happy|—" {
		t.Errorf("owner 0 should select Happy|—, got %q", key)
	}

	if _, err := e.MarkerFound(1); err != nil {
		t.Fatal(err)
	}
	if owner, _ := e.ActiveOwner(); owner != 1 {
		t.Errorf("expected owner 1, got %d", owner)
	}
	if key := e.ComboKey(); key != "Sad|—" {
		t.Errorf("owner 1 should select Sad|—, got %q", key)
	}

	if _, err := e.MarkerLost(1); err != nil {
		t.Fatal(err)
	}
	if owner, _ := e.ActiveOwner(); owner != 0 {
		t.Errorf("expected owner back to 0, got %d", owner)
	}
	if key := e.ComboKey(); key != "Happy|—" {
		t.Errorf("fallback owner should re-select Happy|—, got %q", key)
	}
}

func TestEngine_events_release_selects_default(t *testing.T) {
	e := newEventEngine(t)

	_, _ = e.MarkerFound(0)
	_, _ = e.MarkerLost(0)

	if _, ok := e.ActiveOwner(); ok {
		t.Error("expected no owner after last marker lost")
	}
	if key := e.ComboKey(); key != DefaultKey {
		t.Errorf("released channel should select default, got %q", key)
	}
	if e.ActiveMarkerCount() != 0 {
		t.Errorf("active marker count should be 0, got %d", e.ActiveMarkerCount())
	}
}

func TestEngine_events_unknown_symbol(t *testing.T) {
	e := newEventEngine(t)
	if _, err := e.MarkerFound(42); !errors.Is(err, ErrUnknownSymbol) {
		t.Errorf("expected ErrUnknownSymbol, got %v", err)
	}
	if e.ActiveMarkerCount() != 0 {
		t.Error("unknown symbol must not enter the active set")
	}
}

func TestEngine_events_rejects_ticks(t *testing.T) {
	e := newEventEngine(t)
	if _, _, err := e.IngestTick(nil); !errors.Is(err, ErrWrongMode) {
		t.Errorf("expected ErrWrongMode, got %v", err)
	}
}

func TestEngine_transport_passthrough(t *testing.T) {
	sink := &fakeSink{}
	e := newRankedEngine(t, sink)

	for i := 0; i < 8; i++ {
		_, _, _ = e.IngestTick([]RankedObservation{{Label: "Happy", Confidence: 0.9}})
	}

	e.Play()
	e.Next()
	snap := e.CurrentSnapshot()
	if snap.TrackIndex != 1 || snap.Track == nil || snap.Track.Title != "Good Day" {
		t.Errorf("Next should move to second track, got %+v", snap)
	}

	e.Previous()
	if e.CurrentSnapshot().TrackIndex != 0 {
		t.Error("Previous should move back to first track")
	}

	e.TrackEnded()
	if e.CurrentSnapshot().TrackIndex != 1 {
		t.Error("TrackEnded should advance")
	}

	e.Pause()
	if e.IsPlaying() {
		t.Error("Pause should stop playing")
	}
}

func TestParseMode(t *testing.T) {
	if ParseMode("events") != ModeEvents {
		t.Error("events should parse to ModeEvents")
	}
	if ParseMode("ranked") != ModeRanked || ParseMode("") != ModeRanked || ParseMode("bogus") != ModeRanked {
		t.Error("everything else should default to ModeRanked")
	}
}
