package server

import (
	"fmt"
	"time"

	"github.com/pixelgrove/metaverse/internal/types"
)

// ClientMessage is the closed set of inbound client events. Exactly one
// event field is set per message; anything else is dropped at dispatch.
type ClientMessage struct {
	Join           *Join           `json:"join,omitempty"`
	Move           *Move           `json:"move,omitempty"`
	Chat           *Chat           `json:"chatMessage,omitempty"`
	Interact       *Interact       `json:"interact,omitempty"`
	PrivateMessage *PrivateMessage `json:"privateMessage,omitempty"`

	session *Session `json:"-"`
}

type Join struct {
	Character types.Character `json:"character"`
	RoomId    string          `json:"roomId,omitempty"`
}

type Move struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Chat struct {
	Message string `json:"message"`
}

type Interact struct {
	TargetCharacterId string `json:"targetCharacterId"`
	InteractionType   string `json:"interactionType"`
}

type PrivateMessage struct {
	TargetCharacterId string `json:"targetCharacterId"`
	Message           string `json:"message"`
}

// ServerMessage is the closed set of outbound events. Room-scoped events
// are fanned out to every session in the room; RoomError and
// PrivateMessage are session-scoped.
type ServerMessage struct {
	Timestamp time.Time `json:"timestamp"`

	RoomUpdate           *RoomUpdate                `json:"roomUpdate,omitempty"`
	CharacterUpdate      *CharacterUpdate           `json:"characterUpdate,omitempty"`
	ChatBroadcast        *types.ChatEntry           `json:"chatBroadcast,omitempty"`
	Affinities           *Affinities                `json:"affinities,omitempty"`
	InteractionBroadcast *InteractionBroadcast      `json:"interactionBroadcast,omitempty"`
	PrivateMessage       *types.PrivateMessageEntry `json:"privateMessage,omitempty"`
	RoomError            *RoomError                 `json:"roomError,omitempty"`
}

// RoomUpdate carries the full member snapshot after a join or leave.
type RoomUpdate struct {
	RoomId      string            `json:"roomId"`
	Characters  []types.Character `json:"characters"`
	MemberCount int               `json:"memberCount"`
}

// CharacterUpdate is the delta broadcast for a single character.
type CharacterUpdate struct {
	RoomId    string          `json:"roomId"`
	Character types.Character `json:"character"`
}

// Affinities is the full relationship map of a room.
type Affinities struct {
	RoomId     string            `json:"roomId"`
	Affinities types.AffinityMap `json:"affinities"`
}

type InteractionBroadcast struct {
	FromCharacterId   string    `json:"fromCharacterId"`
	ToCharacterId     string    `json:"toCharacterId"`
	InteractionType   string    `json:"interactionType"`
	Affinity          int       `json:"affinity"`
	FromCharacterName string    `json:"fromCharacterName"`
	ToCharacterName   string    `json:"toCharacterName"`
	Timestamp         time.Time `json:"timestamp"`
}

type RoomError struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	RoomId   string `json:"roomId"`
	Capacity int    `json:"capacity,omitempty"`
}

const (
	errTypeCapacityExceeded   = "capacity_exceeded"
	errTypeServiceUnavailable = "service_unavailable"
)

// Affinity deltas by interaction type. Unknown types score zero.
var interactionDeltas = map[string]int{
	"greet": 5,
	"chat":  3,
	"gift":  10,
	"fight": -20,
}

func interactionDelta(interactionType string) int {
	return interactionDeltas[interactionType]
}

func NewRoomFullError(room types.RoomSummary) *ServerMessage {
	return &ServerMessage{
		Timestamp: Now(),
		RoomError: &RoomError{
			Type:     errTypeCapacityExceeded,
			Message:  fmt.Sprintf("room %q is full", room.Id),
			RoomId:   room.Id,
			Capacity: room.Capacity,
		},
	}
}

func NewServiceUnavailableError(roomId string) *ServerMessage {
	return &ServerMessage{
		Timestamp: Now(),
		RoomError: &RoomError{
			Type:    errTypeServiceUnavailable,
			Message: "server busy, try again",
			RoomId:  roomId,
		},
	}
}

func Now() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}
