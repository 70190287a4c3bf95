package server

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pixelgrove/metaverse/internal/types"
)

func Test_interactionDelta(t *testing.T) {
	tt := []struct {
		interactionType string
		expected        int
	}{
		{"greet", 5},
		{"chat", 3},
		{"gift", 10},
		{"fight", -20},
		{"tickle", 0},
		{"", 0},
	}

	for _, tc := range tt {
		t.Run(tc.interactionType, func(t *testing.T) {
			assert.Equal(t, tc.expected, interactionDelta(tc.interactionType))
		})
	}
}

func TestServerMessageSerialization(t *testing.T) {
	message := &ServerMessage{
		Timestamp: Now(),
		ChatBroadcast: &types.ChatEntry{
			CharacterId:   "p1",
			CharacterName: "Player One",
			Message:       "hello",
			Timestamp:     Now(),
			RoomId:        "main",
		},
	}

	bytes, err := json.Marshal(message)
	assert.NoError(t, err, "expected no error during serialization")

	var decoded map[string]any
	assert.NoError(t, json.Unmarshal(bytes, &decoded))
	assert.Contains(t, decoded, "chatBroadcast", "expected the chat field on the wire")
	assert.NotContains(t, decoded, "roomUpdate", "expected unset event fields omitted")
	assert.NotContains(t, decoded, "roomError", "expected unset event fields omitted")

	chat, ok := decoded["chatBroadcast"].(map[string]any)
	assert.True(t, ok, "expected chatBroadcast to be an object")
	assert.Equal(t, "p1", chat["characterId"])
	assert.Equal(t, "hello", chat["message"])
	assert.Equal(t, "main", chat["roomId"])
}

func TestClientMessageDeserialization(t *testing.T) {
	raw := `{"join":{"character":{"id":"p1","name":"Player One","x":3,"y":4,"color":"#ff0000","emoji":"🙂"},"roomId":"garden"}}`

	var msg ClientMessage
	assert.NoError(t, json.Unmarshal([]byte(raw), &msg))
	assert.NotNil(t, msg.Join, "expected join event populated")
	assert.Nil(t, msg.Chat, "expected other event fields nil")
	assert.Equal(t, "garden", msg.Join.RoomId)
	assert.Equal(t, "p1", msg.Join.Character.Id)
	assert.Equal(t, 3, msg.Join.Character.X)
}

func TestNewRoomFullError(t *testing.T) {
	result := NewRoomFullError(types.RoomSummary{Id: "small", Name: "Small Room", MemberCount: 2, Capacity: 2, IsFull: true})

	assert.NotNil(t, result, "expected result to be non-nil")
	assert.NotNil(t, result.RoomError, "expected room error to be non-nil")
	assert.WithinDuration(t, Now(), result.Timestamp, time.Second, "expected Timestamp to be within 1 second")
	assert.Equal(t, errTypeCapacityExceeded, result.RoomError.Type, "expected capacity error type")
	assert.Equal(t, "small", result.RoomError.RoomId, "expected RoomId to match")
	assert.Equal(t, 2, result.RoomError.Capacity, "expected Capacity to match")
	assert.Contains(t, result.RoomError.Message, "small", "expected the room id in the message")
}

func TestNewServiceUnavailableError(t *testing.T) {
	result := NewServiceUnavailableError("main")

	assert.NotNil(t, result, "expected result to be non-nil")
	assert.NotNil(t, result.RoomError, "expected room error to be non-nil")
	assert.WithinDuration(t, Now(), result.Timestamp, time.Second, "expected Timestamp to be within 1 second")
	assert.Equal(t, errTypeServiceUnavailable, result.RoomError.Type, "expected service unavailable error type")
	assert.Equal(t, "main", result.RoomError.RoomId, "expected RoomId to match")
	assert.Zero(t, result.RoomError.Capacity, "expected Capacity unset")
}
