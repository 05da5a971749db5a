package interfaces

import (
	"context"

	"github.com/statflow/listrelay/dto"
	"github.com/statflow/listrelay/internal/enum"
)

// ForwarderService delivers a derived analytics event to the
// collection endpoint. It never returns an error; the outcome is only
// observed through logs and spans.
type ForwarderService interface {
	Forward(ctx context.Context, record *dto.SubscriptionRecord) enum.DeliveryOutcome
}
