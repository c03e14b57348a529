package services

import (
	"context"

	"github.com/pulsefit/coach-backend/internal/platform/logger"
)

const offlineReply = "I can't reach the coaching model right now. Stick to your current plan and check back soon."

type offlineCoach struct {
	log *logger.Logger
}

// NewOfflineCoach is the no-credentials fallback used in development. Every
// completion returns a fixed holding message.
func NewOfflineCoach(log *logger.Logger) CoachAI {
	return &offlineCoach{log: log.With("service", "CoachAI", "mode", "offline")}
}

func (c *offlineCoach) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	c.log.Debug("offline completion served")
	return &CompletionResponse{Content: offlineReply, Model: "offline"}, nil
}

func (c *offlineCoach) Stream(ctx context.Context, req CompletionRequest, onDelta func(delta string)) (*CompletionResponse, error) {
	if onDelta != nil {
		onDelta(offlineReply)
	}
	return &CompletionResponse{Content: offlineReply, Model: "offline"}, nil
}
