package enums

import "fmt"

// ReceiptStatus mirrors the purchase lifecycle of an entitlement record.
type ReceiptStatus string

const (
	ReceiptStatusQueued     ReceiptStatus = "queued"
	ReceiptStatusProcessing ReceiptStatus = "processing"
	ReceiptStatusExpired    ReceiptStatus = "expired"
	ReceiptStatusHold       ReceiptStatus = "hold"
	ReceiptStatusCanceled   ReceiptStatus = "canceled"
	ReceiptStatusRefunded   ReceiptStatus = "refunded"
	ReceiptStatusCompleted  ReceiptStatus = "completed"
)

var validReceiptStatuses = []ReceiptStatus{
	ReceiptStatusQueued,
	ReceiptStatusProcessing,
	ReceiptStatusExpired,
	ReceiptStatusHold,
	ReceiptStatusCanceled,
	ReceiptStatusRefunded,
	ReceiptStatusCompleted,
}

var receiptStatusCodes = map[ReceiptStatus]int{
	ReceiptStatusQueued:     0,
	ReceiptStatusProcessing: 10,
	ReceiptStatusExpired:    20,
	ReceiptStatusHold:       30,
	ReceiptStatusCanceled:   40,
	ReceiptStatusRefunded:   50,
	ReceiptStatusCompleted:  60,
}

// String implements fmt.Stringer.
func (s ReceiptStatus) String() string {
	return string(s)
}

// Code returns the numeric wire value for the status.
func (s ReceiptStatus) Code() int {
	return receiptStatusCodes[s]
}

// IsValid reports whether the value is a known ReceiptStatus.
func (s ReceiptStatus) IsValid() bool {
	for _, candidate := range validReceiptStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseReceiptStatus converts raw input into a ReceiptStatus.
func ParseReceiptStatus(value string) (ReceiptStatus, error) {
	for _, candidate := range validReceiptStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid receipt status %q", value)
}
