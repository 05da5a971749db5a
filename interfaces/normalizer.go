package interfaces

import (
	"github.com/statflow/listrelay/dto"
)

// NormalizerService turns a raw webhook body into the canonical nested
// event shape, regardless of whether it arrived as JSON or as
// form-encoded bracket-nested keys.
type NormalizerService interface {
	Normalize(contentType string, body []byte) (dto.InboundEvent, error)
}
