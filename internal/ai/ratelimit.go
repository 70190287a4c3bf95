package ai

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/pixelgrove/metaverse/internal/types"
)

// RateLimitedResponder drops replies instead of queueing them when the
// wrapped responder is called faster than the configured rate. Dropped
// replies surface as ErrRateLimited so the caller can fall back or stay
// silent.
type RateLimitedResponder struct {
	next    Responder
	limiter *rate.Limiter
}

func NewRateLimitedResponder(next Responder, r rate.Limit, burst int) *RateLimitedResponder {
	return &RateLimitedResponder{
		next:    next,
		limiter: rate.NewLimiter(r, burst),
	}
}

func (r *RateLimitedResponder) Reply(ctx context.Context, persona types.Character, conversation []types.ChatEntry, prompt string) (string, error) {
	if !r.limiter.Allow() {
		return "", ErrRateLimited
	}
	return r.next.Reply(ctx, persona, conversation, prompt)
}
