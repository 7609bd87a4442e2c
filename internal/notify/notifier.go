// Package notify delivers order status changes to customers and to other systems.
package notify

import (
	"context"
	"errors"

	"go-remedyflow/internal/model"
)

type Notifier interface {
	OrderStatusChanged(ctx context.Context, ev model.OrderStatusEvent) error
}

// Multi fans an event out to every sink and joins their errors.
type Multi []Notifier

func (m Multi) OrderStatusChanged(ctx context.Context, ev model.OrderStatusEvent) error {
	var errs []error
	for _, n := range m {
		if err := n.OrderStatusChanged(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
