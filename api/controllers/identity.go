package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/vendorhub-backend/api/middleware"
	customersvc "github.com/angelmondragon/vendorhub-backend/internal/customers"
	"github.com/angelmondragon/vendorhub-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/vendorhub-backend/pkg/errors"
)

func siteIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := middleware.SiteIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "site context missing")
	}
	siteID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid site id")
	}
	return siteID, nil
}

func userIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return userID, nil
}

// profileFromRequest resolves the caller's customer profile for the request's
// site, creating it on first contact.
func profileFromRequest(r *http.Request, customers customersvc.Service) (*models.CustomerProfile, uuid.UUID, error) {
	siteID, err := siteIDFromRequest(r)
	if err != nil {
		return nil, uuid.Nil, err
	}
	userID, err := userIDFromRequest(r)
	if err != nil {
		return nil, uuid.Nil, err
	}
	profile, err := customers.GetOrCreateProfile(r.Context(), userID, siteID)
	if err != nil {
		return nil, uuid.Nil, err
	}
	return profile, siteID, nil
}
