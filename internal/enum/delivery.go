package enum

// DeliveryOutcome is the terminal state of a forwarding attempt chain.
type DeliveryOutcome string

const (
	DeliveryDelivered DeliveryOutcome = "delivered"
	DeliveryFailed    DeliveryOutcome = "failed"
)

func (t DeliveryOutcome) String() string {
	return string(t)
}
