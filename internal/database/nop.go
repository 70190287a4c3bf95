package database

// NopEventLogRepository discards all writes. It keeps the server fully
// functional when no database is configured.
type NopEventLogRepository struct{}

func (NopEventLogRepository) Ping() error                               { return nil }
func (NopEventLogRepository) LogChatMessage(ChatLog) error              { return nil }
func (NopEventLogRepository) LogPrivateMessage(PrivateMessageLog) error { return nil }
func (NopEventLogRepository) LogInteraction(InteractionLog) error       { return nil }
func (NopEventLogRepository) GetChatMessages(string, int) ([]ChatLog, error) {
	return nil, nil
}
func (NopEventLogRepository) Close() error { return nil }
