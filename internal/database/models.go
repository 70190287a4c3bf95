package database

import "time"

type ChatLog struct {
	Id            int
	RoomId        string
	CharacterId   string
	CharacterName string
	Content       string
	CreatedAt     time.Time
}

type PrivateMessageLog struct {
	Id        int
	SenderId  string
	TargetId  string
	Content   string
	CreatedAt time.Time
}

type InteractionLog struct {
	Id              int
	RoomId          string
	SourceId        string
	TargetId        string
	InteractionType string
	Delta           int
	Score           int
	CreatedAt       time.Time
}
