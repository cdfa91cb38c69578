package match

import (
	"github.com/lox/loveletter/internal/game"
)

// EventKind names what changed in a match.
type EventKind string

const (
	EventJoined EventKind = "joined"
	EventTurn   EventKind = "turn"
	EventRound  EventKind = "round"
)

// Event is published to a match's subscribers after every committed change.
type Event struct {
	Kind     EventKind
	Code     string
	Revision uint64
	// Player is who caused the change.
	Player int

	// Set for EventTurn.
	Action     *game.Action
	Outcome    *game.Outcome
	Resolution *game.Resolution
}

// Subscribe returns a channel of events for the match with the given code
// and a function that unsubscribes and closes it. The channel is also closed
// when the match is swept. A subscriber that falls behind misses events; the
// revision on the next one it reads tells it so.
func (m *Manager) Subscribe(code string) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	m.subMu.Lock()
	id := m.nextID
	m.nextID++
	if m.subs[code] == nil {
		m.subs[code] = make(map[int]chan Event)
	}
	m.subs[code][id] = ch
	m.subMu.Unlock()

	cancel := func() {
		m.subMu.Lock()
		defer m.subMu.Unlock()
		if sub, ok := m.subs[code][id]; ok {
			delete(m.subs[code], id)
			if len(m.subs[code]) == 0 {
				delete(m.subs, code)
			}
			close(sub)
		}
	}
	return ch, cancel
}

func (m *Manager) publish(ev Event) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	for _, ch := range m.subs[ev.Code] {
		select {
		case ch <- ev:
		default:
			m.logger.Warn("Dropped event for slow subscriber", "match", ev.Code, "kind", ev.Kind, "revision", ev.Revision)
		}
	}
}

func (m *Manager) closeSubscribers(code string) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	for _, ch := range m.subs[code] {
		close(ch)
	}
	delete(m.subs, code)
}
