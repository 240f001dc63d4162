package game

import "hash/fnv"

// Factory creates sessions with shared settings. Each room gets its own
// obstacle layout derived from the room id.
type Factory struct {
	settings Settings
	opts     []Option
}

func NewFactory(settings Settings, opts ...Option) *Factory {
	return &Factory{settings: settings, opts: opts}
}

func (f *Factory) Settings() Settings { return f.settings }

func (f *Factory) CreateSession(roomID string) *Session {
	s := f.settings
	if s.Seed == 0 {
		h := fnv.New64a()
		h.Write([]byte(roomID))
		s.Seed = int64(h.Sum64() >> 1)
	}
	return NewSession(s, f.opts...)
}
