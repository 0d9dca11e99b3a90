package enums

import "fmt"

// DeliveryBatchStatus tracks a grouped shipment. Only pending batches accept new orders.
type DeliveryBatchStatus string

const (
	DeliveryBatchStatusPending   DeliveryBatchStatus = "pending"
	DeliveryBatchStatusValidated DeliveryBatchStatus = "validated"
	DeliveryBatchStatusCancelled DeliveryBatchStatus = "cancelled"
)

var validDeliveryBatchStatuses = []DeliveryBatchStatus{
	DeliveryBatchStatusPending,
	DeliveryBatchStatusValidated,
	DeliveryBatchStatusCancelled,
}

// String implements fmt.Stringer.
func (d DeliveryBatchStatus) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DeliveryBatchStatus.
func (d DeliveryBatchStatus) IsValid() bool {
	for _, candidate := range validDeliveryBatchStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDeliveryBatchStatus converts raw input into a DeliveryBatchStatus.
func ParseDeliveryBatchStatus(value string) (DeliveryBatchStatus, error) {
	for _, candidate := range validDeliveryBatchStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery batch status %q", value)
}
