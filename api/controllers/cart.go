package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/vendorhub-backend/api/responses"
	cartsvc "github.com/angelmondragon/vendorhub-backend/internal/cart"
	customersvc "github.com/angelmondragon/vendorhub-backend/internal/customers"
	"github.com/angelmondragon/vendorhub-backend/pkg/db/models"
	"github.com/angelmondragon/vendorhub-backend/pkg/logger"
)

type cartMutation func(r *http.Request, profile *models.CustomerProfile, siteID uuid.UUID, sku string) (*models.Invoice, error)

func cartMutationHandler(customers customersvc.Service, logg *logger.Logger, mutate cartMutation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, siteID, err := profileFromRequest(r, customers)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoice, err := mutate(r, profile, siteID, chi.URLParam(r, "sku"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"invoice_id": invoice.ID,
			"subtotal":   invoice.Subtotal.StringFixed(2),
			"tax":        invoice.Tax.StringFixed(2),
			"total":      invoice.Total.StringFixed(2),
		})
	}
}

// AddToCart puts one unit of the offer behind sku into the caller's cart.
func AddToCart(svc cartsvc.Service, customers customersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return cartMutationHandler(customers, logg, func(r *http.Request, profile *models.CustomerProfile, siteID uuid.UUID, sku string) (*models.Invoice, error) {
		return svc.AddItem(r.Context(), profile, siteID, sku)
	})
}

// RemoveFromCart drops the offer's line entirely from the caller's cart.
func RemoveFromCart(svc cartsvc.Service, customers customersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return cartMutationHandler(customers, logg, func(r *http.Request, profile *models.CustomerProfile, siteID uuid.UUID, sku string) (*models.Invoice, error) {
		return svc.RemoveItem(r.Context(), profile, siteID, sku)
	})
}

// IncreaseItemQuantity bumps the offer's quantity by one.
func IncreaseItemQuantity(svc cartsvc.Service, customers customersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return cartMutationHandler(customers, logg, func(r *http.Request, profile *models.CustomerProfile, siteID uuid.UUID, sku string) (*models.Invoice, error) {
		return svc.IncreaseQuantity(r.Context(), profile, siteID, sku)
	})
}

// RemoveSingleItemFromCart lowers the offer's quantity by one, dropping the
// line when it reaches zero.
func RemoveSingleItemFromCart(svc cartsvc.Service, customers customersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return cartMutationHandler(customers, logg, func(r *http.Request, profile *models.CustomerProfile, siteID uuid.UUID, sku string) (*models.Invoice, error) {
		return svc.DecreaseQuantity(r.Context(), profile, siteID, sku)
	})
}

// GetCart renders the caller's open cart.
func GetCart(svc cartsvc.Service, customers customersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, siteID, err := profileFromRequest(r, customers)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.GetCart(r.Context(), profile, siteID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}
