package playback

// State is a guild's position in the playback state machine. A guild without a
// voice connection is always Idle; Track and the generation are meaningful
// only while Playing.
type State struct {
	Status Status
	Track  Track
	gen    uint64
}

func idle() State { return State{Status: StatusIdle} }

func playing(t Track, gen uint64) State {
	return State{Status: StatusPlaying, Track: t, gen: gen}
}

func (s State) Playing() bool { return s.Status == StatusPlaying }

// accepts reports whether ev belongs to the track currently playing. Events
// that arrive after their track was replaced or stopped are stale.
func (s State) accepts(ev Event) bool {
	return s.Playing() && ev.Gen == s.gen
}
