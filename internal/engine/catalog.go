package engine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Catalog is the read-only source of static playlist configuration.
// Implementations can be file-backed or built in memory; the engine and
// session do not care which.
type Catalog interface {
	// Playlist returns the track list configured for the exact key.
	Playlist(key ComboKey) ([]Track, bool)

	// Default returns the reserved fallback track list. May be empty, in
	// which case unresolvable keys leave the session silent.
	Default() []Track

	// SymbolLabel maps a discrete-event symbol id to its configured label.
	SymbolLabel(id SymbolID) (Label, bool)
}

// StaticCatalog is an immutable in-memory Catalog.
type StaticCatalog struct {
	symbols   map[SymbolID]Label
	playlists map[ComboKey][]Track
	fallback  []Track
}

// NewStaticCatalog builds a Catalog from literal values. Useful for tests
// and for hosts that embed their configuration.
func NewStaticCatalog(symbols map[SymbolID]Label, playlists map[ComboKey][]Track, fallback []Track) *StaticCatalog {
	if symbols == nil {
		symbols = map[SymbolID]Label{}
	}
	if playlists == nil {
		playlists = map[ComboKey][]Track{}
	}
	return &StaticCatalog{symbols: symbols, playlists: playlists, fallback: fallback}
}

// catalogFile matches the on-disk YAML layout.
type catalogFile struct {
	Symbols   map[int]string     `yaml:"symbols"`
	Default   []Track            `yaml:"default"`
	Playlists map[string][]Track `yaml:"playlists"`
}

// LoadCatalog reads a catalog YAML file. The default entry is mandatory
// (it may be an empty list, but the key must be present); track entries
// must carry a source.
func LoadCatalog(path string) (*StaticCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if f.Default == nil {
		return nil, fmt.Errorf("catalog %s: missing mandatory default entry", path)
	}

	symbols := make(map[SymbolID]Label, len(f.Symbols))
	for id, label := range f.Symbols {
		if label == "" {
			return nil, fmt.Errorf("catalog %s: symbol %d has empty label", path, id)
		}
		symbols[SymbolID(id)] = Label(label)
	}

	playlists := make(map[ComboKey][]Track, len(f.Playlists))
	for key, tracks := range f.Playlists {
		for i, tr := range tracks {
			if tr.Source == "" {
				return nil, fmt.Errorf("catalog %s: playlist %q track %d has no source", path, key, i)
			}
		}
		playlists[ComboKey(key)] = tracks
	}
	for i, tr := range f.Default {
		if tr.Source == "" {
			return nil, fmt.Errorf("catalog %s: default track %d has no source", path, i)
		}
	}

	return NewStaticCatalog(symbols, playlists, f.Default), nil
}

// Playlist implements Catalog.Playlist.
func (c *StaticCatalog) Playlist(key ComboKey) ([]Track, bool) {
	tracks, ok := c.playlists[key]
	return tracks, ok
}

// Default implements Catalog.Default.
func (c *StaticCatalog) Default() []Track {
	return c.fallback
}

// SymbolLabel implements Catalog.SymbolLabel.
func (c *StaticCatalog) SymbolLabel(id SymbolID) (Label, bool) {
	label, ok := c.symbols[id]
	return label, ok
}

// LookupPlaylist applies the fallback policy for mapping a combo key to a
// playlist: exact key first, then the key with its components swapped,
// then the default list. An empty list at any step falls through to the
// next, so a key mapped to an empty playlist still reaches the default.
func LookupPlaylist(c Catalog, key ComboKey) []Track {
	if tracks, ok := c.Playlist(key); ok && len(tracks) > 0 {
		return tracks
	}
	if rev, ok := swapped(key); ok {
		if tracks, ok := c.Playlist(rev); ok && len(tracks) > 0 {
			return tracks
		}
	}
	return c.Default()
}
