package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/vendorhub-backend/api/responses"
	"github.com/angelmondragon/vendorhub-backend/api/validators"
	customersvc "github.com/angelmondragon/vendorhub-backend/internal/customers"
	offersvc "github.com/angelmondragon/vendorhub-backend/internal/offers"
	"github.com/angelmondragon/vendorhub-backend/pkg/db/models"
	"github.com/angelmondragon/vendorhub-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/vendorhub-backend/pkg/errors"
	"github.com/angelmondragon/vendorhub-backend/pkg/logger"
	"github.com/angelmondragon/vendorhub-backend/pkg/types"
)

type offerRequest struct {
	Name        string            `json:"name"`
	ProductIDs  []uuid.UUID       `json:"product_ids" validate:"required,min=1"`
	StartDate   time.Time         `json:"start_date" validate:"required"`
	EndDate     *time.Time        `json:"end_date"`
	Terms       string            `json:"terms"`
	TermDetails types.TermDetails `json:"term_details"`
	Available   bool              `json:"available"`
}

func (o offerRequest) toInput() (offersvc.OfferInput, error) {
	terms := enums.OfferTermPerpetual
	if o.Terms != "" {
		parsed, err := enums.ParseOfferTerm(o.Terms)
		if err != nil {
			return offersvc.OfferInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid terms")
		}
		terms = parsed
	}
	return offersvc.OfferInput{
		Name:        o.Name,
		ProductIDs:  o.ProductIDs,
		StartDate:   o.StartDate,
		EndDate:     o.EndDate,
		Terms:       terms,
		TermDetails: o.TermDetails,
		Available:   o.Available,
	}, nil
}

// offerDetail is the buyer-facing offer payload with the resolved price for
// the caller's currency and the cart link pair.
type offerDetail struct {
	Offer              *models.Offer  `json:"offer"`
	Currency           enums.Currency `json:"currency"`
	CurrentPrice       string         `json:"current_price"`
	FromMSRP           bool           `json:"from_msrp"`
	Savings            string         `json:"savings"`
	AddToCartLink      string         `json:"add_to_cart_link"`
	RemoveFromCartLink string         `json:"remove_from_cart_link"`
}

// CreateOffer wraps products into a sellable offer.
func CreateOffer(svc offersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		siteID, err := siteIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload offerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		offer, err := svc.CreateOffer(r.Context(), siteID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, offer)
	}
}

// GetOffer loads one offer by sku and quotes it in the caller's currency.
func GetOffer(svc offersvc.Service, customers customersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, siteID, err := profileFromRequest(r, customers)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		offer, err := svc.GetOfferBySKU(r.Context(), siteID, chi.URLParam(r, "sku"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		currency, err := svc.BestCurrency(r.Context(), offer, profile.Currency)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.CurrentPrice(r.Context(), offer, currency)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		savings, err := svc.Savings(r.Context(), offer, currency)
		if err != nil {
			savings = decimal.Zero
		}

		responses.WriteSuccess(w, offerDetail{
			Offer:              offer,
			Currency:           currency,
			CurrentPrice:       quote.Amount.StringFixed(2),
			FromMSRP:           quote.FromMSRP(),
			Savings:            savings.StringFixed(2),
			AddToCartLink:      offersvc.AddToCartLink(offer),
			RemoveFromCartLink: offersvc.RemoveFromCartLink(offer),
		})
	}
}

// ListOffers returns one page of the site's offers.
func ListOffers(svc offersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		siteID, err := siteIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 20, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		availableOnly := r.URL.Query().Get("available") == "true"

		page, err := svc.ListOffers(r.Context(), siteID, limit, r.URL.Query().Get("cursor"), availableOnly)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"offers":      page.Offers,
			"next_cursor": page.NextCursor,
		})
	}
}

type priceRequest struct {
	Cost      decimal.Decimal `json:"cost" validate:"required"`
	Currency  string          `json:"currency" validate:"required"`
	StartDate time.Time       `json:"start_date" validate:"required"`
	EndDate   *time.Time      `json:"end_date"`
	Priority  int             `json:"priority"`
}

// AddPrice attaches a windowed price row to an offer.
func AddPrice(svc offersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		siteID, err := siteIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		offer, err := svc.GetOfferBySKU(r.Context(), siteID, chi.URLParam(r, "sku"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload priceRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		currency, err := enums.ParseCurrency(payload.Currency)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid currency"))
			return
		}

		price, err := svc.AddPrice(r.Context(), siteID, offer.ID, offersvc.PriceInput{
			Cost:      payload.Cost,
			Currency:  currency,
			StartDate: payload.StartDate,
			EndDate:   payload.EndDate,
			Priority:  payload.Priority,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, price)
	}
}

// ListPrices returns every price row attached to an offer.
func ListPrices(svc offersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		siteID, err := siteIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		offer, err := svc.GetOfferBySKU(r.Context(), siteID, chi.URLParam(r, "sku"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		prices, err := svc.ListPrices(r.Context(), siteID, offer.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, prices)
	}
}
