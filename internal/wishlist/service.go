package wishlist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/vendorhub-backend/pkg/db"
	"github.com/angelmondragon/vendorhub-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/vendorhub-backend/pkg/errors"
)

type offerLookup interface {
	GetOfferBySKU(ctx context.Context, siteID uuid.UUID, sku string) (*models.Offer, error)
}

// Service manages a profile's named offer collections.
type Service interface {
	Create(ctx context.Context, profileID uuid.UUID, name string) (*models.Wishlist, error)
	Get(ctx context.Context, profileID, listID uuid.UUID) (*models.Wishlist, error)
	List(ctx context.Context, profileID uuid.UUID) ([]models.Wishlist, error)
	Delete(ctx context.Context, profileID, listID uuid.UUID) error
	AddOffer(ctx context.Context, profileID, siteID, listID uuid.UUID, sku string) error
	RemoveOffer(ctx context.Context, profileID, siteID, listID uuid.UUID, sku string) error
}

type service struct {
	repo   *Repository
	offers offerLookup
}

// ServiceParams collects the dependencies for NewService.
type ServiceParams struct {
	Repo   *Repository
	Offers offerLookup
}

// NewService builds a wishlist service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("wishlist repository required")
	}
	if params.Offers == nil {
		return nil, fmt.Errorf("offer lookup required")
	}
	return &service{repo: params.Repo, offers: params.Offers}, nil
}

func (s *service) Create(ctx context.Context, profileID uuid.UUID, name string) (*models.Wishlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wishlist name required")
	}

	list, err := s.repo.Create(ctx, &models.Wishlist{
		ID:        uuid.New(),
		ProfileID: profileID,
		Name:      name,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "wishlists_profile_name_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "wishlist name already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating wishlist")
	}
	return list, nil
}

func (s *service) Get(ctx context.Context, profileID, listID uuid.UUID) (*models.Wishlist, error) {
	return s.find(ctx, profileID, listID)
}

func (s *service) List(ctx context.Context, profileID uuid.UUID) ([]models.Wishlist, error) {
	lists, err := s.repo.ListByProfile(ctx, profileID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing wishlists")
	}
	return lists, nil
}

func (s *service) Delete(ctx context.Context, profileID, listID uuid.UUID) error {
	if err := s.repo.Delete(ctx, profileID, listID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "wishlist not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting wishlist")
	}
	return nil
}

// AddOffer links the offer behind sku into the wishlist. Adding an offer
// that is already present is a no-op.
func (s *service) AddOffer(ctx context.Context, profileID, siteID, listID uuid.UUID, sku string) error {
	list, err := s.find(ctx, profileID, listID)
	if err != nil {
		return err
	}
	offer, err := s.lookupOffer(ctx, siteID, sku)
	if err != nil {
		return err
	}

	_, err = s.repo.CreateItem(ctx, &models.WishlistItem{
		ID:         uuid.New(),
		WishlistID: list.ID,
		OfferID:    offer.ID,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "wishlist_items_wishlist_offer_key") {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "adding wishlist item")
	}
	return nil
}

func (s *service) RemoveOffer(ctx context.Context, profileID, siteID, listID uuid.UUID, sku string) error {
	list, err := s.find(ctx, profileID, listID)
	if err != nil {
		return err
	}
	offer, err := s.lookupOffer(ctx, siteID, sku)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteItem(ctx, list.ID, offer.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "offer not in wishlist")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "removing wishlist item")
	}
	return nil
}

func (s *service) find(ctx context.Context, profileID, listID uuid.UUID) (*models.Wishlist, error) {
	list, err := s.repo.FindByID(ctx, profileID, listID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "wishlist not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading wishlist")
	}
	return list, nil
}

func (s *service) lookupOffer(ctx context.Context, siteID uuid.UUID, sku string) (*models.Offer, error) {
	offer, err := s.offers.GetOfferBySKU(ctx, siteID, sku)
	if err != nil {
		if coded := pkgerrors.As(err); coded != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading offer")
	}
	return offer, nil
}
