package receipts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/vendorhub-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/vendorhub-backend/pkg/errors"
	"github.com/angelmondragon/vendorhub-backend/pkg/pagination"
)

// Service exposes a customer's purchase history and entitlement checks.
type Service interface {
	List(ctx context.Context, profileID uuid.UUID, limit int, cursor string) (*ReceiptList, error)
	Get(ctx context.Context, profileID, receiptID uuid.UUID) (*models.Receipt, error)
	Owns(ctx context.Context, profileID, productID uuid.UUID) (bool, error)
}

// ReceiptList is one page of receipts plus the cursor for the next page.
type ReceiptList struct {
	Receipts   []models.Receipt `json:"receipts"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

type service struct {
	repo *Repository
	now  func() time.Time
}

// NewService builds a receipts service backed by the given repository.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("receipts repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) List(ctx context.Context, profileID uuid.UUID, limit int, cursor string) (*ReceiptList, error) {
	parsed, err := pagination.ParseCursor(cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, next, err := s.repo.ListByProfile(ctx, ListByProfileParams{
		ProfileID: profileID,
		Limit:     limit,
		Cursor:    parsed,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing receipts")
	}

	list := &ReceiptList{Receipts: rows}
	if next != nil {
		list.NextCursor = pagination.EncodeCursor(*next)
	}
	return list, nil
}

func (s *service) Get(ctx context.Context, profileID, receiptID uuid.UUID) (*models.Receipt, error) {
	receipt, err := s.repo.FindByID(ctx, profileID, receiptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "receipt not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading receipt")
	}
	return receipt, nil
}

// Owns reports whether the profile holds a completed receipt for the product
// whose validity window covers the current instant.
func (s *service) Owns(ctx context.Context, profileID, productID uuid.UUID) (bool, error) {
	rows, err := s.repo.ListForProduct(ctx, profileID, productID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking ownership")
	}

	now := s.now()
	for _, receipt := range rows {
		if receipt.ValidAt(now) {
			return true, nil
		}
	}
	return false, nil
}
