package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/vendorhub-backend/pkg/db/models"
	"github.com/angelmondragon/vendorhub-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/vendorhub-backend/pkg/errors"
	"github.com/angelmondragon/vendorhub-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service drives an invoice from submitted cart to completed purchase.
type Service interface {
	Checkout(ctx context.Context, profile *models.CustomerProfile, siteID uuid.UUID) (*models.Invoice, error)
	Retry(ctx context.Context, profile *models.CustomerProfile, siteID uuid.UUID) (*models.Invoice, error)
}

type service struct {
	repo      *Repository
	tx        txRunner
	processor PaymentProcessor
	metrics   *metrics.CheckoutMetrics
	now       func() time.Time
}

// ServiceParams collects the dependencies for NewService.
type ServiceParams struct {
	Repo      *Repository
	Tx        txRunner
	Processor PaymentProcessor
	Metrics   *metrics.CheckoutMetrics
}

// NewService builds a checkout service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("checkout repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Processor == nil {
		return nil, fmt.Errorf("payment processor required")
	}
	return &service{
		repo:      params.Repo,
		tx:        params.Tx,
		processor: params.Processor,
		metrics:   params.Metrics,
		now:       time.Now,
	}, nil
}

// Checkout submits the open cart and runs it through payment. The invoice
// comes back in complete or failed status.
func (s *service) Checkout(ctx context.Context, profile *models.CustomerProfile, siteID uuid.UUID) (*models.Invoice, error) {
	invoice, err := s.submit(ctx, profile, siteID)
	if err != nil {
		return nil, err
	}
	return s.process(ctx, profile, invoice)
}

// Retry re-queues the profile's most recent failed invoice and runs payment
// again.
func (s *service) Retry(ctx context.Context, profile *models.CustomerProfile, siteID uuid.UUID) (*models.Invoice, error) {
	invoice, err := s.repo.FindLatestByStatus(ctx, profile.ID, siteID, enums.InvoiceStatusFailed)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no failed checkout to retry")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading invoice")
	}

	if err := s.transition(ctx, s.repo, invoice, enums.InvoiceStatusQueued, nil); err != nil {
		return nil, err
	}
	return s.process(ctx, profile, invoice)
}

// submit moves the open cart to queued and stamps the order date.
func (s *service) submit(ctx context.Context, profile *models.CustomerProfile, siteID uuid.UUID) (*models.Invoice, error) {
	invoice, err := s.repo.FindLatestByStatus(ctx, profile.ID, siteID, enums.InvoiceStatusCart)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidState, "no open cart")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}

	items, err := s.repo.ListOrderItems(ctx, invoice.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart items")
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	orderedAt := s.now()
	if err := s.transition(ctx, s.repo, invoice, enums.InvoiceStatusQueued, map[string]any{"ordered_date": orderedAt}); err != nil {
		return nil, err
	}
	invoice.OrderedDate = &orderedAt
	return invoice, nil
}

// process charges a queued invoice. Success completes it and fans out one
// receipt per order item inside the same transaction; a declined charge
// moves it to failed with the payment attempt recorded.
func (s *service) process(ctx context.Context, profile *models.CustomerProfile, invoice *models.Invoice) (*models.Invoice, error) {
	started := s.now()

	if err := s.transition(ctx, s.repo, invoice, enums.InvoiceStatusProcessing, nil); err != nil {
		return nil, err
	}

	result, err := s.processor.Charge(ctx, ChargeRequest{
		InvoiceID: invoice.ID,
		ProfileID: profile.ID,
		Amount:    invoice.Total,
		Currency:  invoice.Currency,
	})
	if err != nil {
		// The provider is unreachable; leave a traceable failed attempt.
		if failErr := s.recordOutcome(ctx, profile, invoice, &ChargeResult{
			Transaction: "UNAVAILABLE",
			Success:     false,
			Message:     err.Error(),
		}); failErr != nil {
			return nil, failErr
		}
		s.observe(started, false)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "charging payment")
	}

	if err := s.recordOutcome(ctx, profile, invoice, result); err != nil {
		return nil, err
	}
	s.observe(started, result.Success)
	return invoice, nil
}

// recordOutcome writes the payment row, the status move, and (on success)
// the receipt fan-out atomically.
func (s *service) recordOutcome(ctx context.Context, profile *models.CustomerProfile, invoice *models.Invoice, result *ChargeResult) error {
	target := enums.InvoiceStatusFailed
	if result.Success {
		target = enums.InvoiceStatusComplete
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		if err := s.transition(ctx, txRepo, invoice, target, nil); err != nil {
			return err
		}

		_, err := txRepo.CreatePayment(ctx, &models.Payment{
			ID:          uuid.New(),
			InvoiceID:   invoice.ID,
			ProfileID:   &profile.ID,
			Transaction: result.Transaction,
			Provider:    s.processor.Name(),
			Amount:      invoice.Total,
			Result:      result.Message,
			Success:     result.Success,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording payment")
		}

		if result.Success {
			if err := s.writeReceipts(ctx, txRepo, profile, invoice, result.Transaction); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeReceipts creates one entitlement per order item. Partial failures
// aggregate and roll the whole transaction back.
func (s *service) writeReceipts(ctx context.Context, txRepo *Repository, profile *models.CustomerProfile, invoice *models.Invoice, transaction string) error {
	items, err := txRepo.ListOrderItems(ctx, invoice.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order items")
	}

	var errs error
	for _, item := range items {
		for _, receipt := range s.buildReceipts(profile, item, transaction) {
			if _, err := txRepo.CreateReceipt(ctx, receipt); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("order item %s: %w", item.ID, err))
			}
		}
	}
	if errs != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, errs, "writing receipts")
	}
	return nil
}

// buildReceipts grants one entitlement per member product, so bundle
// purchases register ownership of every product inside. The window comes
// from the offer terms: subscriptions get a bounded, auto-renewing window,
// everything else is open-ended.
func (s *service) buildReceipts(profile *models.CustomerProfile, item models.OrderItem, transaction string) []*models.Receipt {
	now := s.now()

	base := models.Receipt{
		ProfileID:   profile.ID,
		OrderItemID: item.ID,
		StartDate:   &now,
		Transaction: transaction,
		Status:      enums.ReceiptStatusCompleted,
	}
	if item.Offer != nil && item.Offer.Terms == enums.OfferTermSubscription {
		months := item.Offer.TermDetails.PeriodMonths
		if months <= 0 {
			months = 1
		}
		end := now.AddDate(0, months, 0)
		base.EndDate = &end
		base.AutoRenew = true
	}

	if item.Offer == nil || len(item.Offer.Products) == 0 {
		receipt := base
		receipt.ID = uuid.New()
		return []*models.Receipt{&receipt}
	}

	receipts := make([]*models.Receipt, 0, len(item.Offer.Products))
	for i := range item.Offer.Products {
		receipt := base
		receipt.ID = uuid.New()
		receipt.ProductID = &item.Offer.Products[i].ID
		receipts = append(receipts, &receipt)
	}
	return receipts
}

// transition applies a status move through a guarded update. The row-level
// status check is what serializes concurrent checkouts of the same invoice;
// CanTransition rejects moves the table never allows.
func (s *service) transition(ctx context.Context, txRepo *Repository, invoice *models.Invoice, next enums.InvoiceStatus, extra map[string]any) error {
	if !invoice.Status.CanTransition(next) {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "invalid invoice status move").
			WithDetails(fmt.Sprintf("%s -> %s", invoice.Status, next))
	}

	moved, err := txRepo.TransitionInvoice(ctx, invoice.ID, invoice.Status, next, extra)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving invoice")
	}
	if !moved {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "invoice status changed concurrently").
			WithDetails(fmt.Sprintf("%s -> %s", invoice.Status, next))
	}
	invoice.Status = next
	return nil
}

func (s *service) observe(started time.Time, success bool) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveDuration(s.processor.Name(), time.Since(started))
	if success {
		s.metrics.IncSuccess(s.processor.Name())
	} else {
		s.metrics.IncFailure(s.processor.Name())
	}
}
