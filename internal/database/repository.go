package database

// EventLogRepository persists chat and relationship events. Writes are
// fire-and-forget from the room server's perspective: a failed write is
// logged by the caller and never affects in-memory room state.
type EventLogRepository interface {
	Ping() error
	LogChatMessage(entry ChatLog) error
	LogPrivateMessage(entry PrivateMessageLog) error
	LogInteraction(entry InteractionLog) error
	GetChatMessages(roomId string, limit int) ([]ChatLog, error)
	Close() error
}
