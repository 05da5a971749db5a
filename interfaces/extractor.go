package interfaces

import (
	"github.com/statflow/listrelay/dto"
)

// ExtractorService pulls the fields of interest out of a normalized
// event. It never fails; absent fields come back empty.
type ExtractorService interface {
	Extract(event dto.InboundEvent) *dto.SubscriptionRecord
}
