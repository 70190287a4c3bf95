package database

import (
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS chat_logs (
	id SERIAL PRIMARY KEY,
	room_id TEXT NOT NULL,
	character_id TEXT NOT NULL,
	character_name TEXT NOT NULL,
	content TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS private_message_logs (
	id SERIAL PRIMARY KEY,
	sender_id TEXT NOT NULL,
	target_id TEXT NOT NULL,
	content TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS interaction_logs (
	id SERIAL PRIMARY KEY,
	room_id TEXT NOT NULL,
	source_id TEXT NOT NULL,
	target_id TEXT NOT NULL,
	interaction_type TEXT NOT NULL,
	delta INTEGER NOT NULL,
	score INTEGER NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);`

type PgEventLogRepository struct {
	conn *sql.DB
}

func NewPgEventLogRepository(dsn string) (*PgEventLogRepository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &PgEventLogRepository{conn: db}, nil
}

func (db *PgEventLogRepository) Ping() error {
	return db.conn.Ping()
}

func (db *PgEventLogRepository) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}
