package service

import (
	"context"

	"go-remedyflow/internal/model"
)

// Broadcaster pushes live events to connected back-office clients.
// Publish must not block the caller.
type Broadcaster interface {
	Publish(event string, payload any)
}

// OrderNotifier is told about every committed order status change.
type OrderNotifier interface {
	OrderStatusChanged(ctx context.Context, ev model.OrderStatusEvent) error
}

type nopBroadcaster struct{}

func (nopBroadcaster) Publish(string, any) {}

func broadcasterOrNop(b Broadcaster) Broadcaster {
	if b == nil {
		return nopBroadcaster{}
	}
	return b
}
