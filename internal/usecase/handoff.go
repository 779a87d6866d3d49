package usecase

import (
	"context"

	"github.com/growthkit/leadflow/internal/entity"
)

// HandoffReceiver is implemented by the outreach workflow.
type HandoffReceiver interface {
	ReceiveHandoff(payload entity.HandoffPayload) error
}

// InProcessHandoff connects the two workflows directly, for deployments
// that run both in one process without a broker.
type InProcessHandoff struct {
	Receiver HandoffReceiver
}

func (h *InProcessHandoff) PublishHandoff(_ context.Context, payload entity.HandoffPayload) error {
	return h.Receiver.ReceiveHandoff(payload)
}
