package enums

import "fmt"

// InvoiceStatus tracks an invoice from open cart through checkout.
type InvoiceStatus string

const (
	InvoiceStatusCart       InvoiceStatus = "cart"
	InvoiceStatusQueued     InvoiceStatus = "queued"
	InvoiceStatusProcessing InvoiceStatus = "processing"
	InvoiceStatusFailed     InvoiceStatus = "failed"
	InvoiceStatusComplete   InvoiceStatus = "complete"
)

var validInvoiceStatuses = []InvoiceStatus{
	InvoiceStatusCart,
	InvoiceStatusQueued,
	InvoiceStatusProcessing,
	InvoiceStatusFailed,
	InvoiceStatusComplete,
}

var invoiceStatusCodes = map[InvoiceStatus]int{
	InvoiceStatusCart:       0,
	InvoiceStatusQueued:     10,
	InvoiceStatusProcessing: 20,
	InvoiceStatusFailed:     30,
	InvoiceStatusComplete:   40,
}

// invoiceTransitions is the closed transition table. Failed carts may be
// requeued for another payment attempt; every other move is one-directional.
var invoiceTransitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceStatusCart:       {InvoiceStatusQueued},
	InvoiceStatusQueued:     {InvoiceStatusProcessing},
	InvoiceStatusProcessing: {InvoiceStatusComplete, InvoiceStatusFailed},
	InvoiceStatusFailed:     {InvoiceStatusQueued},
	InvoiceStatusComplete:   {},
}

// String implements fmt.Stringer.
func (s InvoiceStatus) String() string {
	return string(s)
}

// Code returns the numeric wire value for the status.
func (s InvoiceStatus) Code() int {
	return invoiceStatusCodes[s]
}

// IsValid reports whether the value is a known InvoiceStatus.
func (s InvoiceStatus) IsValid() bool {
	for _, candidate := range validInvoiceStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// CanTransition reports whether moving from s to next is allowed.
func (s InvoiceStatus) CanTransition(next InvoiceStatus) bool {
	for _, candidate := range invoiceTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ParseInvoiceStatus converts raw input into an InvoiceStatus.
func ParseInvoiceStatus(value string) (InvoiceStatus, error) {
	for _, candidate := range validInvoiceStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid invoice status %q", value)
}
