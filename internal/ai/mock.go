package ai

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pixelgrove/metaverse/internal/types"
)

type MockResponder struct {
	mock.Mock
}

func (m *MockResponder) Reply(ctx context.Context, persona types.Character, conversation []types.ChatEntry, prompt string) (string, error) {
	args := m.Called(ctx, persona, conversation, prompt)
	return args.String(0), args.Error(1)
}
