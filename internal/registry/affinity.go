package registry

import (
	"github.com/pixelgrove/metaverse/internal/types"
)

// AffinityLedger tracks per-room relationship scores between character
// pairs, keyed target then source. Scores are mutated only by additive
// deltas and are unbounded in both directions; there is no decay and no
// clamping.
type AffinityLedger struct {
	reg *Registry
}

// Adjust applies delta to the (target, source) pair in the room, creating
// intermediate maps on first touch, and returns the post-mutation score.
func (l *AffinityLedger) Adjust(roomId, targetId, sourceId string, delta int) (int, error) {
	l.reg.mu.Lock()
	defer l.reg.mu.Unlock()

	room, ok := l.reg.rooms[roomId]
	if !ok {
		return 0, ErrRoomNotFound
	}

	if room.affinity[targetId] == nil {
		room.affinity[targetId] = make(map[string]int)
	}
	room.affinity[targetId][sourceId] += delta
	return room.affinity[targetId][sourceId], nil
}

// Get reports the score for the pair. Unestablished pairs and unknown
// rooms score zero, never an error.
func (l *AffinityLedger) Get(roomId, targetId, sourceId string) int {
	l.reg.mu.Lock()
	defer l.reg.mu.Unlock()

	room, ok := l.reg.rooms[roomId]
	if !ok {
		return 0
	}
	return room.affinity[targetId][sourceId]
}

// AllForRoom returns a deep copy of the room's full affinity map for
// broadcast payloads. Unknown rooms yield an empty map.
func (l *AffinityLedger) AllForRoom(roomId string) types.AffinityMap {
	l.reg.mu.Lock()
	defer l.reg.mu.Unlock()

	out := make(types.AffinityMap)
	room, ok := l.reg.rooms[roomId]
	if !ok {
		return out
	}

	for target, sources := range room.affinity {
		out[target] = make(map[string]int, len(sources))
		for source, score := range sources {
			out[target][source] = score
		}
	}
	return out
}
