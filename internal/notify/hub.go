package notify

import (
	"context"

	"go-remedyflow/internal/model"
)

type publisher interface {
	Publish(event string, payload any)
}

// HubNotifier forwards status events to the live websocket feed.
type HubNotifier struct {
	hub publisher
}

func NewHubNotifier(hub publisher) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) OrderStatusChanged(_ context.Context, ev model.OrderStatusEvent) error {
	n.hub.Publish("order_status_changed", ev)
	return nil
}
