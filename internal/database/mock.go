package database

import (
	"github.com/stretchr/testify/mock"
)

type MockEventLogRepository struct {
	mock.Mock
}

func (m *MockEventLogRepository) Ping() error {
	args := m.Called()
	return args.Error(0)
}
func (m *MockEventLogRepository) LogChatMessage(entry ChatLog) error {
	args := m.Called(entry)
	return args.Error(0)
}
func (m *MockEventLogRepository) LogPrivateMessage(entry PrivateMessageLog) error {
	args := m.Called(entry)
	return args.Error(0)
}
func (m *MockEventLogRepository) LogInteraction(entry InteractionLog) error {
	args := m.Called(entry)
	return args.Error(0)
}
func (m *MockEventLogRepository) GetChatMessages(roomId string, limit int) ([]ChatLog, error) {
	args := m.Called(roomId, limit)
	if logs, ok := args.Get(0).([]ChatLog); ok {
		return logs, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockEventLogRepository) Close() error {
	args := m.Called()
	return args.Error(0)
}
