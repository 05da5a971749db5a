package errors

import "github.com/pkg/errors"

var (
	// payload errors
	ErrMalformedPayload = errors.New("body could not be parsed under its declared content type")
	ErrMissingEmail     = errors.New("subscription event has no usable email")

	// request errors
	ErrInvalidToken = errors.New("webhook token mismatch")

	// delivery errors
	ErrConfigurationMissing = errors.New("collection endpoint credentials are not configured")
	ErrDeliveryFailed       = errors.New("delivery to collection endpoint failed")
)
