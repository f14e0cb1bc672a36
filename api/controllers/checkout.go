package controllers

import (
	"net/http"

	"github.com/angelmondragon/vendorhub-backend/api/responses"
	checkoutsvc "github.com/angelmondragon/vendorhub-backend/internal/checkout"
	customersvc "github.com/angelmondragon/vendorhub-backend/internal/customers"
	"github.com/angelmondragon/vendorhub-backend/pkg/logger"
)

// Checkout submits the caller's open cart through payment.
func Checkout(svc checkoutsvc.Service, customers customersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, siteID, err := profileFromRequest(r, customers)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoice, err := svc.Checkout(r.Context(), profile, siteID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"invoice_id": invoice.ID,
			"status":     invoice.Status,
			"total":      invoice.Total.StringFixed(2),
		})
	}
}

// CheckoutRetry re-runs payment for the caller's most recent failed invoice.
func CheckoutRetry(svc checkoutsvc.Service, customers customersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, siteID, err := profileFromRequest(r, customers)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoice, err := svc.Retry(r.Context(), profile, siteID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"invoice_id": invoice.ID,
			"status":     invoice.Status,
			"total":      invoice.Total.StringFixed(2),
		})
	}
}
