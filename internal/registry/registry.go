// Package registry is the single source of truth for room existence,
// membership, capacity enforcement and room-scoped chat and affinity
// state. It performs no network fan-out; broadcasting belongs to the
// session router.
package registry

import (
	"log"
	"sort"
	"sync"
	"time"

	"github.com/teris-io/shortid"

	"github.com/pixelgrove/metaverse/internal/history"
	"github.com/pixelgrove/metaverse/internal/types"
)

const (
	// DefaultRoomId is the persistent room every character lands in when
	// no room is named. It is never destroyed.
	DefaultRoomId   = "main"
	DefaultRoomName = "Main Plaza"

	// DefaultCapacity applies to the default room and to rooms created
	// implicitly on first join.
	DefaultCapacity = 20

	// ChatHistoryCap is the canonical per-room chat retention.
	ChatHistoryCap = 50
)

type room struct {
	id         string
	name       string
	capacity   int
	persistent bool
	members    map[string]types.Character
	chat       *history.History[types.ChatEntry]
	affinity   types.AffinityMap
}

// Registry owns the set of rooms. All operations are synchronous and
// total: existence and capacity checks happen strictly before any state
// write, so a failed call leaves no partial mutation.
type Registry struct {
	mu    sync.Mutex
	log   *log.Logger
	rooms map[string]*room
	now   func() time.Time
	genId func() string
}

func New(logger *log.Logger) *Registry {
	r := &Registry{
		log:   logger,
		rooms: make(map[string]*room),
		now:   func() time.Time { return time.Now().UTC().Round(time.Millisecond) },
		genId: func() string {
			id, err := shortid.Generate()
			if err != nil {
				// shortid only fails on a misconfigured generator
				return DefaultRoomId
			}
			return id
		},
	}

	r.rooms[DefaultRoomId] = newRoom(DefaultRoomId, DefaultRoomName, DefaultCapacity, true)
	return r
}

func newRoom(id, name string, capacity int, persistent bool) *room {
	return &room{
		id:         id,
		name:       name,
		capacity:   capacity,
		persistent: persistent,
		members:    make(map[string]types.Character),
		chat:       history.New[types.ChatEntry](ChatHistoryCap),
		affinity:   make(types.AffinityMap),
	}
}

// CreateRoom registers a new room. An empty id is assigned a generated
// one. Rooms created explicitly survive until empty.
func (r *Registry) CreateRoom(id, name string, capacity int) (types.RoomSummary, error) {
	if capacity < 1 {
		return types.RoomSummary{}, ErrInvalidCapacity
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if id == "" {
		id = r.genId()
	}
	if _, ok := r.rooms[id]; ok {
		return types.RoomSummary{}, ErrRoomExists
	}

	room := newRoom(id, name, capacity, false)
	r.rooms[id] = room
	r.log.Printf("created room %q (capacity %d)", id, capacity)

	return summarize(room), nil
}

// GetRoom returns the summary view of a room.
func (r *Registry) GetRoom(id string) (types.RoomSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[id]
	if !ok {
		return types.RoomSummary{}, ErrRoomNotFound
	}
	return summarize(room), nil
}

// JoinRoom inserts character into the room, creating the room implicitly
// when the id is unknown. A character already in another room is moved
// atomically; there is no window where it belongs to two rosters. On
// ErrRoomCapacity nothing is mutated. The returned slice is the post-join
// member snapshot for the caller to broadcast.
func (r *Registry) JoinRoom(roomId string, character types.Character) ([]types.Character, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if roomId == "" {
		roomId = DefaultRoomId
	}

	room, ok := r.rooms[roomId]
	if !ok {
		room = newRoom(roomId, roomId, DefaultCapacity, false)
		r.rooms[roomId] = room
		r.log.Printf("implicitly created room %q on join", roomId)
	}

	if _, rejoining := room.members[character.Id]; !rejoining && len(room.members) >= room.capacity {
		return nil, ErrRoomCapacity
	}

	// remove-then-insert keeps the single-roster invariant
	r.removeFromCurrentRoom(character.Id, roomId)
	room.members[character.Id] = character

	return membersSnapshot(room), nil
}

// LeaveRoom removes the character from the room. Leaving a room you are
// not in is a no-op, never an error. An empty non-persistent room is
// destroyed along with its history and affinity state.
func (r *Registry) LeaveRoom(roomId, characterId string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomId]
	if !ok {
		return
	}

	delete(room.members, characterId)
	r.destroyIfEmpty(room)
}

// MoveCharacter updates the character's position in its room's roster and
// returns the updated snapshot.
func (r *Registry) MoveCharacter(roomId, characterId string, x, y int) (types.Character, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomId]
	if !ok {
		return types.Character{}, ErrRoomNotFound
	}

	ch, ok := room.members[characterId]
	if !ok {
		return types.Character{}, ErrRoomNotFound
	}

	ch.X, ch.Y = x, y
	room.members[characterId] = ch
	return ch, nil
}

// Member returns the room's snapshot of the character.
func (r *Registry) Member(roomId, characterId string) (types.Character, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomId]
	if !ok {
		return types.Character{}, false
	}
	ch, ok := room.members[characterId]
	return ch, ok
}

// Members returns the room's member snapshot.
func (r *Registry) Members(roomId string) ([]types.Character, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomId]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return membersSnapshot(room), nil
}

// ListActiveRooms returns a point-in-time view of all rooms, ordered by
// id for stable output.
func (r *Registry) ListActiveRooms() []types.RoomSummary {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]types.RoomSummary, 0, len(r.rooms))
	for _, room := range r.rooms {
		out = append(out, summarize(room))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return out
}

// AppendChat appends entry to the room's bounded chat history.
func (r *Registry) AppendChat(roomId string, entry types.ChatEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomId]
	if !ok {
		return ErrRoomNotFound
	}

	room.chat.Append(entry)
	return nil
}

// ChatHistory returns up to limit entries of the room's retained chat
// starting at offset from the oldest, insertion-ordered. An offset past
// the end yields an empty slice.
func (r *Registry) ChatHistory(roomId string, offset, limit int) ([]types.ChatEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomId]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room.chat.Range(offset, limit), nil
}

// RecentChat returns the most recent limit chat entries, oldest first.
func (r *Registry) RecentChat(roomId string, limit int) ([]types.ChatEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomId]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room.chat.Snapshot(limit), nil
}

// Affinity returns the ledger view over this registry's rooms.
func (r *Registry) Affinity() *AffinityLedger {
	return &AffinityLedger{reg: r}
}

// Now reports the registry's clock, normalized for the wire.
func (r *Registry) Now() time.Time {
	return r.now()
}

// removeFromCurrentRoom drops the character from whichever roster holds
// it, skipping dst. Caller holds the lock.
func (r *Registry) removeFromCurrentRoom(characterId, dst string) {
	for id, room := range r.rooms {
		if id == dst {
			continue
		}
		if _, ok := room.members[characterId]; ok {
			delete(room.members, characterId)
			r.destroyIfEmpty(room)
			return
		}
	}
}

func (r *Registry) destroyIfEmpty(room *room) {
	if len(room.members) == 0 && !room.persistent {
		delete(r.rooms, room.id)
		r.log.Printf("destroyed empty room %q", room.id)
	}
}

func summarize(room *room) types.RoomSummary {
	return types.RoomSummary{
		Id:          room.id,
		Name:        room.name,
		MemberCount: len(room.members),
		Capacity:    room.capacity,
		IsFull:      len(room.members) >= room.capacity,
	}
}

func membersSnapshot(room *room) []types.Character {
	out := make([]types.Character, 0, len(room.members))
	for _, ch := range room.members {
		out = append(out, ch)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return out
}
