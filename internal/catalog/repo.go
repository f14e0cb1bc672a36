package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/vendorhub-backend/internal/repo"
	"github.com/angelmondragon/vendorhub-backend/pkg/db/models"
	"github.com/angelmondragon/vendorhub-backend/pkg/pagination"
)

// Repository persists products and their classifiers.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// ListProductsParams captures the knobs for the site-scoped product listing.
type ListProductsParams struct {
	SiteID        uuid.UUID
	Limit         int
	Cursor        *pagination.Cursor
	AvailableOnly bool
}

// CreateProduct inserts a new product row with its classifier links.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.DB(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct saves product field changes.
func (r *Repository) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.DB(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct removes a product scoped to its site.
func (r *Repository) DeleteProduct(ctx context.Context, siteID, productID uuid.UUID) error {
	result := r.DB(ctx).
		Where("id = ? AND site_id = ?", productID, siteID).
		Delete(&models.Product{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindProductByID loads a product with classifiers, scoped to its site.
func (r *Repository) FindProductByID(ctx context.Context, siteID, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.DB(ctx).
		Preload("Classifications").
		First(&product, "id = ? AND site_id = ?", productID, siteID).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindProductBySKU loads a product by its site-scoped SKU.
func (r *Repository) FindProductBySKU(ctx context.Context, siteID uuid.UUID, sku string) (*models.Product, error) {
	var product models.Product
	err := r.DB(ctx).
		Preload("Classifications").
		First(&product, "site_id = ? AND sku = ?", siteID, sku).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindProductBySlug loads a product by its slug within a site.
func (r *Repository) FindProductBySlug(ctx context.Context, siteID uuid.UUID, slug string) (*models.Product, error) {
	var product models.Product
	err := r.DB(ctx).
		Preload("Classifications").
		First(&product, "site_id = ? AND slug = ?", siteID, slug).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListProducts returns one page of products ordered newest first.
func (r *Repository) ListProducts(ctx context.Context, params ListProductsParams) ([]models.Product, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.DB(ctx).Model(&models.Product{}).Where("site_id = ?", params.SiteID)
	if params.AvailableOnly {
		query = query.Where("available = ?", true)
	}
	query = r.Keyset(query, params.Cursor)

	var products []models.Product
	if err := query.Limit(limit).Find(&products).Error; err != nil {
		return nil, nil, err
	}

	if len(products) > normalized {
		next := products[normalized]
		products = products[:normalized]
		return products, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return products, nil, nil
}

// CreateClassifier inserts a classifier row.
func (r *Repository) CreateClassifier(ctx context.Context, classifier *models.ProductClassifier) (*models.ProductClassifier, error) {
	if err := r.DB(ctx).Create(classifier).Error; err != nil {
		return nil, err
	}
	return classifier, nil
}

// ListClassifiers returns all classifiers ordered by name.
func (r *Repository) ListClassifiers(ctx context.Context) ([]models.ProductClassifier, error) {
	var classifiers []models.ProductClassifier
	if err := r.DB(ctx).Order("name ASC").Find(&classifiers).Error; err != nil {
		return nil, err
	}
	return classifiers, nil
}

// FindClassifiersByIDs loads the named classifier rows.
func (r *Repository) FindClassifiersByIDs(ctx context.Context, ids []uuid.UUID) ([]models.ProductClassifier, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var classifiers []models.ProductClassifier
	if err := r.DB(ctx).Where("id IN ?", ids).Find(&classifiers).Error; err != nil {
		return nil, err
	}
	return classifiers, nil
}

// ReplaceClassifications swaps the full classifier set on a product.
func (r *Repository) ReplaceClassifications(ctx context.Context, product *models.Product, classifiers []models.ProductClassifier) error {
	return r.DB(ctx).Model(product).Association("Classifications").Replace(classifiers)
}
