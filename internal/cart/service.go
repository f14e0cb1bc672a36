package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/vendorhub-backend/internal/offers"
	"github.com/angelmondragon/vendorhub-backend/pkg/db/models"
	"github.com/angelmondragon/vendorhub-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/vendorhub-backend/pkg/errors"
	"github.com/angelmondragon/vendorhub-backend/pkg/redis"
)

const lockScope = "cart"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type priceResolver interface {
	GetOfferBySKU(ctx context.Context, siteID uuid.UUID, sku string) (*models.Offer, error)
	CurrentPrice(ctx context.Context, offer *models.Offer, currency enums.Currency) (*offers.PriceQuote, error)
	BestCurrency(ctx context.Context, offer *models.Offer, preferred enums.Currency) (enums.Currency, error)
}

// Unlocker releases a held mutation lease.
type Unlocker interface {
	Release(ctx context.Context) error
}

// Locker serializes cart mutations per profile.
type Locker interface {
	Lock(ctx context.Context, profileID uuid.UUID) (Unlocker, error)
}

// RedisLocker leases cart mutations through the shared Redis client. The
// database transaction remains the correctness backstop when a lease expires.
type RedisLocker struct {
	Client *redis.Client
	TTL    time.Duration
}

// Lock acquires the per-profile cart lease.
func (l RedisLocker) Lock(ctx context.Context, profileID uuid.UUID) (Unlocker, error) {
	lock, err := l.Client.AcquireLock(ctx, lockScope, profileID.String(), l.TTL)
	if err != nil {
		return nil, err
	}
	return lock, nil
}

// Service exposes the cart-phase invoice operations.
type Service interface {
	AddItem(ctx context.Context, profile *models.CustomerProfile, siteID uuid.UUID, sku string) (*models.Invoice, error)
	RemoveItem(ctx context.Context, profile *models.CustomerProfile, siteID uuid.UUID, sku string) (*models.Invoice, error)
	IncreaseQuantity(ctx context.Context, profile *models.CustomerProfile, siteID uuid.UUID, sku string) (*models.Invoice, error)
	DecreaseQuantity(ctx context.Context, profile *models.CustomerProfile, siteID uuid.UUID, sku string) (*models.Invoice, error)
	GetCart(ctx context.Context, profile *models.CustomerProfile, siteID uuid.UUID) (*CartView, error)
}

type service struct {
	repo    *Repository
	tx      txRunner
	offers  priceResolver
	locker  Locker
	taxRate decimal.Decimal
	now     func() time.Time
}

// ServiceParams collects the dependencies for NewService.
type ServiceParams struct {
	Repo    *Repository
	Tx      txRunner
	Offers  priceResolver
	Locker  Locker
	TaxRate decimal.Decimal
}

// NewService builds a cart service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Offers == nil {
		return nil, fmt.Errorf("price resolver required")
	}
	if params.Locker == nil {
		return nil, fmt.Errorf("cart locker required")
	}
	if params.TaxRate.IsNegative() {
		return nil, fmt.Errorf("tax rate must be non-negative")
	}
	return &service{
		repo:    params.Repo,
		tx:      params.Tx,
		offers:  params.Offers,
		locker:  params.Locker,
		taxRate: params.TaxRate,
		now:     time.Now,
	}, nil
}

// AddItem places one unit of the offer in the profile's open cart, creating
// the cart on first use. Adding an offer already in the cart increments its
// quantity; the price snapshot from the first add is kept.
func (s *service) AddItem(ctx context.Context, profile *models.CustomerProfile, siteID uuid.UUID, sku string) (*models.Invoice, error) {
	offer, err := s.sellableOffer(ctx, siteID, sku)
	if err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = unlock.Release(ctx) }()

	var invoice *models.Invoice
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		invoice, err = s.findOrCreateCart(ctx, txRepo, profile, siteID, offer)
		if err != nil {
			return err
		}

		item, err := txRepo.FindOrderItem(ctx, invoice.ID, offer.ID)
		switch {
		case err == nil:
			item.Quantity++
			if err := txRepo.SaveOrderItem(ctx, item); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving order item")
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			quote, err := s.offers.CurrentPrice(ctx, offer, invoice.Currency)
			if err != nil {
				return err
			}
			_, err = txRepo.CreateOrderItem(ctx, &models.OrderItem{
				ID:        uuid.New(),
				InvoiceID: invoice.ID,
				OfferID:   offer.ID,
				Quantity:  1,
				PriceID:   quote.PriceID,
				UnitPrice: quote.Amount,
			})
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating order item")
			}
		default:
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order item")
		}

		return s.recomputeTotals(ctx, txRepo, invoice)
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// RemoveItem drops the offer's line from the open cart entirely.
func (s *service) RemoveItem(ctx context.Context, profile *models.CustomerProfile, siteID uuid.UUID, sku string) (*models.Invoice, error) {
	return s.mutateExistingItem(ctx, profile, siteID, sku, func(txRepo *Repository, item *models.OrderItem) error {
		return txRepo.DeleteOrderItem(ctx, item.ID)
	})
}

// IncreaseQuantity bumps the line's quantity by one.
func (s *service) IncreaseQuantity(ctx context.Context, profile *models.CustomerProfile, siteID uuid.UUID, sku string) (*models.Invoice, error) {
	return s.mutateExistingItem(ctx, profile, siteID, sku, func(txRepo *Repository, item *models.OrderItem) error {
		item.Quantity++
		return txRepo.SaveOrderItem(ctx, item)
	})
}

// DecreaseQuantity lowers the line's quantity by one; at quantity one the
// line is removed, matching RemoveItem.
func (s *service) DecreaseQuantity(ctx context.Context, profile *models.CustomerProfile, siteID uuid.UUID, sku string) (*models.Invoice, error) {
	return s.mutateExistingItem(ctx, profile, siteID, sku, func(txRepo *Repository, item *models.OrderItem) error {
		if item.Quantity <= 1 {
			return txRepo.DeleteOrderItem(ctx, item.ID)
		}
		item.Quantity--
		return txRepo.SaveOrderItem(ctx, item)
	})
}

// GetCart renders the open cart. A profile with no cart-status invoice gets
// a not-found, matching the mutation endpoints' contract.
func (s *service) GetCart(ctx context.Context, profile *models.CustomerProfile, siteID uuid.UUID) (*CartView, error) {
	invoice, err := s.repo.FindCartInvoice(ctx, profile.ID, siteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no open cart")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}

	items, err := s.repo.ListOrderItems(ctx, invoice.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart items")
	}

	view := &CartView{
		OrderItems: make([]ItemView, 0, len(items)),
		Total:      invoice.Total.StringFixed(2),
	}
	if profile.User != nil {
		view.Username = profile.User.Username
	}
	for _, item := range items {
		line := ItemView{
			Price:     item.UnitPrice.StringFixed(2),
			ItemTotal: item.LineTotal().StringFixed(2),
			Quantity:  item.Quantity,
		}
		if item.Offer != nil {
			line.SKU = item.Offer.SKU
			line.Name = item.Offer.Name
		}
		view.OrderItems = append(view.OrderItems, line)
	}
	return view, nil
}

// sellableOffer loads the offer by sku and hides offers that are not
// currently purchasable behind the same not-found the unknown sku gets.
func (s *service) sellableOffer(ctx context.Context, siteID uuid.UUID, sku string) (*models.Offer, error) {
	if strings.TrimSpace(sku) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}
	offer, err := s.offers.GetOfferBySKU(ctx, siteID, sku)
	if err != nil {
		return nil, err
	}
	if !offer.Available || !offer.ActiveAt(s.now()) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
	}
	return offer, nil
}

func (s *service) findOrCreateCart(ctx context.Context, txRepo *Repository, profile *models.CustomerProfile, siteID uuid.UUID, offer *models.Offer) (*models.Invoice, error) {
	invoice, err := txRepo.FindCartInvoice(ctx, profile.ID, siteID)
	if err == nil {
		return invoice, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}

	currency, err := s.offers.BestCurrency(ctx, offer, profile.Currency)
	if err != nil {
		return nil, err
	}
	created, err := txRepo.CreateInvoice(ctx, &models.Invoice{
		ID:        uuid.New(),
		ProfileID: profile.ID,
		SiteID:    siteID,
		Status:    enums.InvoiceStatusCart,
		Currency:  currency,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating cart")
	}
	return created, nil
}

func (s *service) mutateExistingItem(ctx context.Context, profile *models.CustomerProfile, siteID uuid.UUID, sku string, mutate func(txRepo *Repository, item *models.OrderItem) error) (*models.Invoice, error) {
	offer, err := s.lookupOffer(ctx, siteID, sku)
	if err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = unlock.Release(ctx) }()

	var invoice *models.Invoice
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		invoice, err = txRepo.FindCartInvoice(ctx, profile.ID, siteID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeInvalidState, "no open cart")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
		}

		item, err := txRepo.FindOrderItem(ctx, invoice.ID, offer.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order item")
		}

		if err := mutate(txRepo, item); err != nil {
			if pkgerrors.As(err) != nil {
				return err
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mutating order item")
		}

		return s.recomputeTotals(ctx, txRepo, invoice)
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// lookupOffer resolves the sku without the availability gate; removing an
// offer that has since gone off sale must still work.
func (s *service) lookupOffer(ctx context.Context, siteID uuid.UUID, sku string) (*models.Offer, error) {
	if strings.TrimSpace(sku) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}
	return s.offers.GetOfferBySKU(ctx, siteID, sku)
}

// recomputeTotals rebuilds subtotal, tax, and total from the current lines.
// Totals are always derived from scratch, never adjusted incrementally.
func (s *service) recomputeTotals(ctx context.Context, txRepo *Repository, invoice *models.Invoice) error {
	items, err := txRepo.ListOrderItems(ctx, invoice.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart items")
	}

	subtotal := decimal.Zero
	taxable := decimal.Zero
	for _, item := range items {
		line := item.LineTotal()
		subtotal = subtotal.Add(line)
		if item.Offer != nil && offerTaxable(item.Offer) {
			taxable = taxable.Add(line)
		}
	}

	invoice.Subtotal = subtotal.Round(2)
	invoice.Tax = taxable.Mul(s.taxRate).Round(2)
	invoice.Total = invoice.Subtotal.Add(invoice.Tax)

	if err := txRepo.SaveInvoice(ctx, invoice); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving invoice totals")
	}
	return nil
}

func offerTaxable(offer *models.Offer) bool {
	for _, product := range offer.Products {
		for _, classification := range product.Classifications {
			if classification.Taxable {
				return true
			}
		}
	}
	return false
}
