package ai

import (
	"context"
	"sync"

	"github.com/pixelgrove/metaverse/internal/types"
)

var defaultReplies = []string{
	"Hmm, interesting...",
	"Tell me more!",
	"I was just thinking about that.",
	"Ha! You don't say.",
	"The plaza is lively today, isn't it?",
}

// StaticResponder answers from a fixed rotation of canned lines. It is
// the mandated fallback when the real dialogue generator fails, and the
// default responder when none is configured.
type StaticResponder struct {
	mu      sync.Mutex
	replies []string
	next    int
}

func NewStaticResponder(replies ...string) *StaticResponder {
	if len(replies) == 0 {
		replies = defaultReplies
	}
	return &StaticResponder{replies: replies}
}

func (r *StaticResponder) Reply(_ context.Context, _ types.Character, _ []types.ChatEntry, _ string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reply := r.replies[r.next%len(r.replies)]
	r.next++
	return reply, nil
}
