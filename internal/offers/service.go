package offers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/vendorhub-backend/pkg/db"
	"github.com/angelmondragon/vendorhub-backend/pkg/db/models"
	"github.com/angelmondragon/vendorhub-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/vendorhub-backend/pkg/errors"
	"github.com/angelmondragon/vendorhub-backend/pkg/ident"
	"github.com/angelmondragon/vendorhub-backend/pkg/pagination"
	"github.com/angelmondragon/vendorhub-backend/pkg/types"
)

const (
	skuRetries = 3

	addToCartPath      = "/sales/cart/add/%s/"
	removeFromCartPath = "/sales/cart/remove/%s/"
)

// Service exposes offer CRUD and price resolution.
type Service interface {
	CreateOffer(ctx context.Context, siteID uuid.UUID, input OfferInput) (*models.Offer, error)
	GetOffer(ctx context.Context, siteID, offerID uuid.UUID) (*models.Offer, error)
	GetOfferBySKU(ctx context.Context, siteID uuid.UUID, sku string) (*models.Offer, error)
	GetOfferBySlug(ctx context.Context, siteID uuid.UUID, slug string) (*models.Offer, error)
	ListOffers(ctx context.Context, siteID uuid.UUID, limit int, cursor string, availableOnly bool) (*OfferList, error)
	AddPrice(ctx context.Context, siteID, offerID uuid.UUID, input PriceInput) (*models.Price, error)
	ListPrices(ctx context.Context, siteID, offerID uuid.UUID) ([]models.Price, error)

	CurrentPrice(ctx context.Context, offer *models.Offer, currency enums.Currency) (*PriceQuote, error)
	Savings(ctx context.Context, offer *models.Offer, currency enums.Currency) (decimal.Decimal, error)
	BestCurrency(ctx context.Context, offer *models.Offer, preferred enums.Currency) (enums.Currency, error)
}

type service struct {
	repo *Repository
	now  func() time.Time
}

// NewService builds an offer service over the provided repository.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("offers repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

// OfferInput captures an offer create payload. Name is optional; a blank
// name derives from the member products.
type OfferInput struct {
	Name        string
	ProductIDs  []uuid.UUID
	StartDate   time.Time
	EndDate     *time.Time
	Terms       enums.OfferTerm
	TermDetails types.TermDetails
	Available   bool
}

// PriceInput captures a new windowed price row.
type PriceInput struct {
	Cost      decimal.Decimal
	Currency  enums.Currency
	StartDate time.Time
	EndDate   *time.Time
	Priority  int
}

// OfferList is one page of offers with its continuation cursor.
type OfferList struct {
	Offers     []models.Offer
	NextCursor string
}

// PriceQuote is the resolved cost of an offer in one currency. PriceID is
// nil when the quote fell back to the MSRP table.
type PriceQuote struct {
	Amount   decimal.Decimal
	Currency enums.Currency
	PriceID  *uuid.UUID
}

// FromMSRP reports whether the quote came from the fallback table rather
// than a price row.
func (q PriceQuote) FromMSRP() bool {
	return q.PriceID == nil
}

// AddToCartLink returns the storefront path that adds the offer to a cart.
func AddToCartLink(offer *models.Offer) string {
	return fmt.Sprintf(addToCartPath, offer.Slug)
}

// RemoveFromCartLink returns the storefront path that removes the offer.
func RemoveFromCartLink(offer *models.Offer) string {
	return fmt.Sprintf(removeFromCartPath, offer.Slug)
}

// BundleName derives the display name for a multi-product offer.
func BundleName(products []models.Product) string {
	names := make([]string, 0, len(products))
	for _, p := range products {
		names = append(names, p.Name)
	}
	return "Bundle: " + strings.Join(names, ", ")
}

func (s *service) CreateOffer(ctx context.Context, siteID uuid.UUID, input OfferInput) (*models.Offer, error) {
	if siteID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "site id is required")
	}
	if len(input.ProductIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer needs at least one product")
	}
	terms := input.Terms
	if terms == "" {
		terms = enums.OfferTermPerpetual
	}
	if !terms.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown offer terms")
	}
	if input.EndDate != nil && input.EndDate.Before(input.StartDate) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end date precedes start date")
	}

	var products []models.Product
	err := s.repo.DB(ctx).
		Where("site_id = ? AND id IN ?", siteID, input.ProductIDs).
		Find(&products).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading products")
	}
	if len(products) != len(input.ProductIDs) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown product id")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		if len(products) == 1 {
			name = products[0].Name
		} else {
			name = BundleName(products)
		}
	}

	startDate := input.StartDate
	if startDate.IsZero() {
		startDate = s.now()
	}

	offer := &models.Offer{
		ID:          uuid.New(),
		SiteID:      siteID,
		Name:        name,
		Slug:        ident.Slugify(name),
		Products:    products,
		StartDate:   startDate,
		EndDate:     input.EndDate,
		Terms:       terms,
		TermDetails: input.TermDetails,
		Available:   input.Available,
	}

	for attempt := 0; attempt < skuRetries; attempt++ {
		sku, err := ident.NewSKU()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generating sku")
		}
		offer.SKU = sku

		created, err := s.repo.CreateOffer(ctx, offer)
		if err == nil {
			return created, nil
		}
		if !db.IsUniqueViolation(err, "offers_site_sku_key") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating offer")
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "could not allocate a unique sku")
}

func (s *service) GetOffer(ctx context.Context, siteID, offerID uuid.UUID) (*models.Offer, error) {
	offer, err := s.repo.FindByID(ctx, siteID, offerID)
	if err != nil {
		return nil, offerLoadError(err)
	}
	return offer, nil
}

func (s *service) GetOfferBySKU(ctx context.Context, siteID uuid.UUID, sku string) (*models.Offer, error) {
	offer, err := s.repo.FindBySKU(ctx, siteID, strings.TrimSpace(sku))
	if err != nil {
		return nil, offerLoadError(err)
	}
	return offer, nil
}

func (s *service) GetOfferBySlug(ctx context.Context, siteID uuid.UUID, slug string) (*models.Offer, error) {
	offer, err := s.repo.FindBySlug(ctx, siteID, strings.TrimSpace(slug))
	if err != nil {
		return nil, offerLoadError(err)
	}
	return offer, nil
}

func offerLoadError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading offer")
}

func (s *service) ListOffers(ctx context.Context, siteID uuid.UUID, limit int, cursor string, availableOnly bool) (*OfferList, error) {
	parsed, err := pagination.ParseCursor(cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	offers, next, err := s.repo.ListOffers(ctx, ListOffersParams{
		SiteID:        siteID,
		Limit:         limit,
		Cursor:        parsed,
		AvailableOnly: availableOnly,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing offers")
	}

	list := &OfferList{Offers: offers}
	if next != nil {
		list.NextCursor = pagination.EncodeCursor(*next)
	}
	return list, nil
}

func (s *service) AddPrice(ctx context.Context, siteID, offerID uuid.UUID, input PriceInput) (*models.Price, error) {
	if _, err := s.GetOffer(ctx, siteID, offerID); err != nil {
		return nil, err
	}
	if input.Cost.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cost must be non-negative")
	}
	if !input.Currency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported currency")
	}
	if input.EndDate != nil && input.EndDate.Before(input.StartDate) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end date precedes start date")
	}

	startDate := input.StartDate
	if startDate.IsZero() {
		startDate = s.now()
	}

	price, err := s.repo.CreatePrice(ctx, &models.Price{
		ID:        uuid.New(),
		OfferID:   offerID,
		Cost:      input.Cost,
		Currency:  input.Currency,
		StartDate: startDate,
		EndDate:   input.EndDate,
		Priority:  input.Priority,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating price")
	}
	return price, nil
}

func (s *service) ListPrices(ctx context.Context, siteID, offerID uuid.UUID) ([]models.Price, error) {
	if _, err := s.GetOffer(ctx, siteID, offerID); err != nil {
		return nil, err
	}
	prices, err := s.repo.ListPrices(ctx, offerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing prices")
	}
	return prices, nil
}

// CurrentPrice resolves the active price row for the currency, falling back
// to the MSRP table only when no row qualifies. Any other query error
// propagates unchanged.
func (s *service) CurrentPrice(ctx context.Context, offer *models.Offer, currency enums.Currency) (*PriceQuote, error) {
	if offer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer is required")
	}
	if !currency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported currency")
	}

	price, err := s.repo.ActivePrice(ctx, offer.ID, currency, s.now())
	if err == nil {
		return &PriceQuote{Amount: price.Cost, Currency: currency, PriceID: &price.ID}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving price")
	}

	msrp, ok := s.msrpTotal(offer, currency)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no price available for currency").WithDetails(currency.String())
	}
	return &PriceQuote{Amount: msrp, Currency: currency}, nil
}

// Savings is the MSRP minus the current price, clamped at zero.
func (s *service) Savings(ctx context.Context, offer *models.Offer, currency enums.Currency) (decimal.Decimal, error) {
	quote, err := s.CurrentPrice(ctx, offer, currency)
	if err != nil {
		return decimal.Zero, err
	}
	msrp, ok := s.msrpTotal(offer, currency)
	if !ok {
		return decimal.Zero, nil
	}
	savings := msrp.Sub(quote.Amount)
	if savings.IsNegative() {
		return decimal.Zero, nil
	}
	return savings, nil
}

// BestCurrency returns the preferred currency when the whole offer can be
// quoted in it, and the default currency otherwise.
func (s *service) BestCurrency(ctx context.Context, offer *models.Offer, preferred enums.Currency) (enums.Currency, error) {
	if offer == nil {
		return enums.DefaultCurrency, pkgerrors.New(pkgerrors.CodeValidation, "offer is required")
	}
	if !preferred.IsValid() || preferred == enums.DefaultCurrency {
		return enums.DefaultCurrency, nil
	}

	if _, ok := s.msrpTotal(offer, preferred); ok {
		return preferred, nil
	}
	covered, err := s.repo.HasActivePrice(ctx, offer.ID, preferred, s.now())
	if err != nil {
		return enums.DefaultCurrency, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking price coverage")
	}
	if covered {
		return preferred, nil
	}
	return enums.DefaultCurrency, nil
}

// msrpTotal sums the member products' MSRP entries for the currency. The
// fallback only exists when every member carries the currency.
func (s *service) msrpTotal(offer *models.Offer, currency enums.Currency) (decimal.Decimal, bool) {
	if len(offer.Products) == 0 {
		return decimal.Zero, false
	}
	total := decimal.Zero
	for _, product := range offer.Products {
		amount, ok := product.MSRP.Get(currency)
		if !ok {
			return decimal.Zero, false
		}
		total = total.Add(amount)
	}
	return total, true
}
