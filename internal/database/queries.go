package database

func (db *PgEventLogRepository) LogChatMessage(entry ChatLog) error {
	_, err := db.conn.Exec(
		"INSERT INTO chat_logs (room_id, character_id, character_name, content, created_at) "+
			"VALUES ($1, $2, $3, $4, $5)",
		entry.RoomId,
		entry.CharacterId,
		entry.CharacterName,
		entry.Content,
		entry.CreatedAt,
	)

	return err
}

func (db *PgEventLogRepository) LogPrivateMessage(entry PrivateMessageLog) error {
	_, err := db.conn.Exec(
		"INSERT INTO private_message_logs (sender_id, target_id, content, created_at) "+
			"VALUES ($1, $2, $3, $4)",
		entry.SenderId,
		entry.TargetId,
		entry.Content,
		entry.CreatedAt,
	)

	return err
}

func (db *PgEventLogRepository) LogInteraction(entry InteractionLog) error {
	_, err := db.conn.Exec(
		"INSERT INTO interaction_logs (room_id, source_id, target_id, interaction_type, delta, score, created_at) "+
			"VALUES ($1, $2, $3, $4, $5, $6, $7)",
		entry.RoomId,
		entry.SourceId,
		entry.TargetId,
		entry.InteractionType,
		entry.Delta,
		entry.Score,
		entry.CreatedAt,
	)

	return err
}

func (db *PgEventLogRepository) GetChatMessages(roomId string, limit int) ([]ChatLog, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := db.conn.Query(
		"SELECT id, room_id, character_id, character_name, content, created_at "+
			"FROM chat_logs WHERE room_id = $1 ORDER BY id DESC LIMIT $2",
		roomId,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []ChatLog
	for rows.Next() {
		var e ChatLog
		if err := rows.Scan(&e.Id, &e.RoomId, &e.CharacterId, &e.CharacterName, &e.Content, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
