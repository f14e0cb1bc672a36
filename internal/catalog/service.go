package catalog

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
	"github.com/angelmondragon/vendorhub-backend/pkg/ident"
	"github.com/angelmondragon/vendorhub-backend/pkg/pagination"
	"github.com/angelmondragon/vendorhub-backend/pkg/types"
)

const skuRetries = 3

// Service exposes catalog CRUD for products and classifiers.
type Service interface {
	CreateProduct(ctx context.Context, siteID uuid.UUID, input ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, siteID, productID uuid.UUID, input ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, siteID, productID uuid.UUID) error
	GetProduct(ctx context.Context, siteID, productID uuid.UUID) (*models.Product, error)
	GetProductBySKU(ctx context.Context, siteID uuid.UUID, sku string) (*models.Product, error)
	ListProducts(ctx context.Context, siteID uuid.UUID, limit int, cursor string, availableOnly bool) (*ProductList, error)
	CreateClassifier(ctx context.Context, input ClassifierInput) (*models.ProductClassifier, error)
	ListClassifiers(ctx context.Context) ([]models.ProductClassifier, error)
}

type service struct {
	repo *Repository
}

// NewService builds a catalog service over the provided repository.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

// ProductInput captures a product create or update payload.
type ProductInput struct {
	Name          string
	Description   string
	Available     bool
	MSRP          types.MSRP
	ClassifierIDs []uuid.UUID
}

// ClassifierInput captures a classifier create payload.
type ClassifierInput struct {
	Name    string
	Taxable bool
}

// ProductList is one page of products with its continuation cursor.
type ProductList struct {
	Products   []models.Product
	NextCursor string
}

func (s *service) CreateProduct(ctx context.Context, siteID uuid.UUID, input ProductInput) (*models.Product, error) {
	if siteID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "site id is required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	for currency := range input.MSRP {
		if !currency.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported msrp currency").WithDetails(currency.String())
		}
	}

	classifiers, err := s.resolveClassifiers(ctx, input.ClassifierIDs)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		ID:              uuid.New(),
		SiteID:          siteID,
		Name:            name,
		Slug:            ident.Slugify(name),
		Available:       input.Available,
		Description:     strings.TrimSpace(input.Description),
		MSRP:            input.MSRP,
		Classifications: classifiers,
	}

	// Regenerate on SKU collision; the keyspace makes more than one retry rare.
	for attempt := 0; attempt < skuRetries; attempt++ {
		sku, err := ident.NewSKU()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generating sku")
		}
		product.SKU = sku

		created, err := s.repo.CreateProduct(ctx, product)
		if err == nil {
			return created, nil
		}
		if !db.IsUniqueViolation(err, "products_site_sku_key") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating product")
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "could not allocate a unique sku")
}

func (s *service) UpdateProduct(ctx context.Context, siteID, productID uuid.UUID, input ProductInput) (*models.Product, error) {
	product, err := s.GetProduct(ctx, siteID, productID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	for currency := range input.MSRP {
		if !currency.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported msrp currency").WithDetails(currency.String())
		}
	}

	product.Name = name
	product.Slug = ident.Slugify(name)
	product.Description = strings.TrimSpace(input.Description)
	product.Available = input.Available
	product.MSRP = input.MSRP

	classifiers, err := s.resolveClassifiers(ctx, input.ClassifierIDs)
	if err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceClassifications(ctx, product, classifiers); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating classifications")
	}

	updated, err := s.repo.UpdateProduct(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating product")
	}
	updated.Classifications = classifiers
	return updated, nil
}

func (s *service) DeleteProduct(ctx context.Context, siteID, productID uuid.UUID) error {
	if err := s.repo.DeleteProduct(ctx, siteID, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting product")
	}
	return nil
}

func (s *service) GetProduct(ctx context.Context, siteID, productID uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindProductByID(ctx, siteID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	return product, nil
}

func (s *service) GetProductBySKU(ctx context.Context, siteID uuid.UUID, sku string) (*models.Product, error) {
	product, err := s.repo.FindProductBySKU(ctx, siteID, strings.TrimSpace(sku))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	return product, nil
}

func (s *service) ListProducts(ctx context.Context, siteID uuid.UUID, limit int, cursor string, availableOnly bool) (*ProductList, error) {
	parsed, err := pagination.ParseCursor(cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	products, next, err := s.repo.ListProducts(ctx, ListProductsParams{
		SiteID:        siteID,
		Limit:         limit,
		Cursor:        parsed,
		AvailableOnly: availableOnly,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing products")
	}

	list := &ProductList{Products: products}
	if next != nil {
		list.NextCursor = pagination.EncodeCursor(*next)
	}
	return list, nil
}

func (s *service) CreateClassifier(ctx context.Context, input ClassifierInput) (*models.ProductClassifier, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "classifier name is required")
	}
	classifier, err := s.repo.CreateClassifier(ctx, &models.ProductClassifier{
		ID:      uuid.New(),
		Name:    name,
		Taxable: input.Taxable,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "classifier already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating classifier")
	}
	return classifier, nil
}

func (s *service) ListClassifiers(ctx context.Context) ([]models.ProductClassifier, error) {
	classifiers, err := s.repo.ListClassifiers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing classifiers")
	}
	return classifiers, nil
}

func (s *service) resolveClassifiers(ctx context.Context, ids []uuid.UUID) ([]models.ProductClassifier, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	classifiers, err := s.repo.FindClassifiersByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading classifiers")
	}
	if len(classifiers) != len(ids) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown classifier id")
	}
	return classifiers, nil
}
