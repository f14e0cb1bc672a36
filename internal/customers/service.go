package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/vendorhub-backend/pkg/db"
	"github.com/angelmondragon/vendorhub-backend/pkg/db/models"
	"github.com/angelmondragon/vendorhub-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/vendorhub-backend/pkg/errors"
)

// Service manages customer profiles and their addresses.
type Service interface {
	ResolveSite(ctx context.Context, domain string) (*models.Site, error)
	GetOrCreateProfile(ctx context.Context, userID, siteID uuid.UUID) (*models.CustomerProfile, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*models.CustomerProfile, error)
	SetCurrency(ctx context.Context, profileID uuid.UUID, currency enums.Currency) (*models.CustomerProfile, error)
	AddAddress(ctx context.Context, profileID uuid.UUID, input AddressInput) (*models.Address, error)
	ListAddresses(ctx context.Context, profileID uuid.UUID) ([]models.Address, error)
	RemoveAddress(ctx context.Context, profileID, addressID uuid.UUID) error
}

type service struct {
	repo *Repository
}

// NewService builds a customer service over the provided repository.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customers repository required")
	}
	return &service{repo: repo}, nil
}

// AddressInput captures a new shipping address.
type AddressInput struct {
	Name       string
	Line1      string
	Line2      *string
	City       string
	State      string
	PostalCode string
	Country    string
}

// ResolveSite maps a request's site domain to its tenant row.
func (s *service) ResolveSite(ctx context.Context, domain string) (*models.Site, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "site domain required")
	}

	site, err := s.repo.FindSiteByDomain(ctx, domain)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "site not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading site")
	}
	return site, nil
}

// GetOrCreateProfile returns the profile for (user, site), creating it on
// first contact. A create that loses a race to a concurrent request falls
// back to the winner's row.
func (s *service) GetOrCreateProfile(ctx context.Context, userID, siteID uuid.UUID) (*models.CustomerProfile, error) {
	if userID == uuid.Nil || siteID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and site id are required")
	}

	profile, err := s.repo.FindByUserAndSite(ctx, userID, siteID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading profile")
	}

	created, err := s.repo.Create(ctx, &models.CustomerProfile{
		ID:       uuid.New(),
		UserID:   userID,
		SiteID:   siteID,
		Currency: enums.DefaultCurrency,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "customer_profiles_user_site_key") {
			return s.GetProfileByUserAndSite(ctx, userID, siteID)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating profile")
	}
	return created, nil
}

// GetProfileByUserAndSite loads the profile without creating it.
func (s *service) GetProfileByUserAndSite(ctx context.Context, userID, siteID uuid.UUID) (*models.CustomerProfile, error) {
	profile, err := s.repo.FindByUserAndSite(ctx, userID, siteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading profile")
	}
	return profile, nil
}

func (s *service) GetProfile(ctx context.Context, id uuid.UUID) (*models.CustomerProfile, error) {
	profile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading profile")
	}
	return profile, nil
}

func (s *service) SetCurrency(ctx context.Context, profileID uuid.UUID, currency enums.Currency) (*models.CustomerProfile, error) {
	if !currency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported currency")
	}
	profile, err := s.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	profile.Currency = currency
	if err := s.repo.Save(ctx, profile); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving profile")
	}
	return profile, nil
}

func (s *service) AddAddress(ctx context.Context, profileID uuid.UUID, input AddressInput) (*models.Address, error) {
	if profileID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "profile id is required")
	}
	if strings.TrimSpace(input.Line1) == "" || strings.TrimSpace(input.City) == "" ||
		strings.TrimSpace(input.PostalCode) == "" || strings.TrimSpace(input.Country) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "line1, city, postal code and country are required")
	}

	address, err := s.repo.CreateAddress(ctx, &models.Address{
		ID:         uuid.New(),
		ProfileID:  profileID,
		Name:       strings.TrimSpace(input.Name),
		Line1:      strings.TrimSpace(input.Line1),
		Line2:      input.Line2,
		City:       strings.TrimSpace(input.City),
		State:      strings.TrimSpace(input.State),
		PostalCode: strings.TrimSpace(input.PostalCode),
		Country:    strings.ToUpper(strings.TrimSpace(input.Country)),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating address")
	}
	return address, nil
}

func (s *service) ListAddresses(ctx context.Context, profileID uuid.UUID) ([]models.Address, error) {
	addresses, err := s.repo.ListAddresses(ctx, profileID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing addresses")
	}
	return addresses, nil
}

func (s *service) RemoveAddress(ctx context.Context, profileID, addressID uuid.UUID) error {
	if _, err := s.repo.FindAddress(ctx, profileID, addressID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading address")
	}
	if err := s.repo.DeleteAddress(ctx, profileID, addressID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting address")
	}
	return nil
}
