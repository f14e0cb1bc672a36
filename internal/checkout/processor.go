package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/vendorhub-backend/pkg/enums"
)

// ChargeRequest is the provider-agnostic payment request.
type ChargeRequest struct {
	InvoiceID uuid.UUID
	ProfileID uuid.UUID
	Amount    decimal.Decimal
	Currency  enums.Currency
}

// ChargeResult is the provider's answer. Transaction must be set even on a
// declined charge so the attempt stays traceable.
type ChargeResult struct {
	Transaction string
	Success     bool
	Message     string
}

// PaymentProcessor abstracts the payment provider. Adapters translate to
// their gateway; the checkout flow only sees this surface.
type PaymentProcessor interface {
	Name() string
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}

// SandboxProcessor approves every charge and mints a traceable transaction
// id. It backs local development and the default configuration.
type SandboxProcessor struct{}

func (SandboxProcessor) Name() string { return "sandbox" }

func (SandboxProcessor) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	txID := fmt.Sprintf("SANDBOX-%s", strings.ToUpper(uuid.NewString()[:12]))
	return &ChargeResult{
		Transaction: txID,
		Success:     true,
		Message:     "approved",
	}, nil
}
