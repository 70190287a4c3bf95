package types

import (
	"time"
)

// Character is the snapshot of an avatar as held by the room that owns it.
// A character belongs to at most one room at a time.
type Character struct {
	Id      string `json:"id"`
	Name    string `json:"name"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Color   string `json:"color,omitempty"`
	Emoji   string `json:"emoji,omitempty"`
	IsAi    bool   `json:"isAi"`
	Emotion string `json:"emotion,omitempty"`
}

// RoomSummary is the read-only view of a room returned by room listings.
type RoomSummary struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	MemberCount int    `json:"memberCount"`
	Capacity    int    `json:"capacity"`
	IsFull      bool   `json:"isFull"`
}

type ChatEntry struct {
	CharacterId   string    `json:"characterId"`
	CharacterName string    `json:"characterName"`
	Message       string    `json:"message"`
	Timestamp     time.Time `json:"timestamp"`
	RoomId        string    `json:"roomId"`
}

type PrivateMessageEntry struct {
	CharacterId       string    `json:"characterId"`
	CharacterName     string    `json:"characterName"`
	TargetCharacterId string    `json:"targetCharacterId"`
	Message           string    `json:"message"`
	Timestamp         time.Time `json:"timestamp"`
}

// AffinityMap maps target character id -> source character id -> score.
// Absent pairs implicitly score zero.
type AffinityMap map[string]map[string]int
