package game

import "skirmish/internal/nav"

type EventKind string

const (
	EventState         EventKind = "state"
	EventTurn          EventKind = "turn"
	EventBudget        EventKind = "budget"
	EventUnitMoving    EventKind = "unit_moving"
	EventUnitMoved     EventKind = "unit_moved"
	EventUnitAttacked  EventKind = "unit_attacked"
	EventUnitDespawned EventKind = "unit_despawned"
	EventGameOver      EventKind = "game_over"
)

// Event is one replicated change. Match is always the state after the change.
type Event struct {
	Kind   EventKind  `json:"kind"`
	Match  MatchState `json:"match"`
	Unit   *UnitState `json:"unit,omitempty"`
	Target UnitID     `json:"target,omitempty"`
	Path   []nav.Vec2 `json:"path,omitempty"`
	Reason string     `json:"reason,omitempty"`
}

// Feed fans events out to observers in subscription order. It is owned by
// the session goroutine and is not safe for concurrent use.
type Feed struct {
	subs map[int]func(Event)
	keys []int
	next int
}

func NewFeed() *Feed {
	return &Feed{subs: make(map[int]func(Event))}
}

// Subscribe registers fn and returns a function that removes it.
func (f *Feed) Subscribe(fn func(Event)) func() {
	id := f.next
	f.next++
	f.subs[id] = fn
	f.keys = append(f.keys, id)
	return func() {
		if _, ok := f.subs[id]; !ok {
			return
		}
		delete(f.subs, id)
		for i, k := range f.keys {
			if k == id {
				f.keys = append(f.keys[:i], f.keys[i+1:]...)
				break
			}
		}
	}
}

func (f *Feed) Publish(e Event) {
	for _, k := range append([]int(nil), f.keys...) {
		if fn, ok := f.subs[k]; ok {
			fn(e)
		}
	}
}
