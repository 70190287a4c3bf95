// Package ai defines the NPC dialogue collaborator. The room server
// calls a Responder out-of-band and never blocks room-state mutation on
// it; retry and backoff concerns live behind this interface, not in the
// server.
package ai

import (
	"context"
	"errors"

	"github.com/pixelgrove/metaverse/internal/types"
)

// ErrRateLimited is returned when a reply is dropped by the limiter.
var ErrRateLimited = errors.New("npc responder rate limited")

// Responder generates an NPC's chat reply. persona is the AI character
// speaking, conversation is the recent room chat for context, and prompt
// is the message being replied to.
type Responder interface {
	Reply(ctx context.Context, persona types.Character, conversation []types.ChatEntry, prompt string) (string, error)
}

// FallbackResponder tries primary and falls back to a secondary on any
// error. The server wires a StaticResponder as the fallback so NPCs
// always answer.
type FallbackResponder struct {
	Primary  Responder
	Fallback Responder
}

func (r *FallbackResponder) Reply(ctx context.Context, persona types.Character, conversation []types.ChatEntry, prompt string) (string, error) {
	reply, err := r.Primary.Reply(ctx, persona, conversation, prompt)
	if err != nil {
		return r.Fallback.Reply(ctx, persona, conversation, prompt)
	}
	return reply, nil
}
