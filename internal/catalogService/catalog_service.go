package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"memorabilia-market/internal/marketerrors"
	"memorabilia-market/internal/models"
	"memorabilia-market/internal/repository"
	"memorabilia-market/utils"
)

// CatalogService manages the product catalog
type CatalogService struct {
	repo repository.ProductStore
	now  func() time.Time
}

// NewCatalogService creates a new CatalogService instance
func NewCatalogService(repo repository.ProductStore) *CatalogService {
	return &CatalogService{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// ListProducts returns the catalog, optionally narrowed to auctions or fixed-price listings
func (s *CatalogService) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	products, err := s.repo.ListProducts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list products: %w", err)
	}
	return products, nil
}

// GetProduct returns a single product
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (models.Product, error) {
	if id <= 0 {
		return models.Product{}, fmt.Errorf("service: %w - invalid product ID", marketerrors.ErrProductNotFound)
	}

	product, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return models.Product{}, fmt.Errorf("service: failed to get product %d: %w", id, err)
	}
	return product, nil
}

// CreateProduct validates and stores a new listing. The id and createdAt are assigned by storage.
func (s *CatalogService) CreateProduct(ctx context.Context, product models.Product) (models.Product, error) {
	product.ID = 0
	product.CreatedAt = s.now()
	if err := validateProduct(product); err != nil {
		return models.Product{}, err
	}

	if err := s.repo.CreateProduct(ctx, &product); err != nil {
		return models.Product{}, fmt.Errorf("service: failed to create product: %w", err)
	}
	return product, nil
}

// UpdateProduct merges the supplied fields into an existing product
func (s *CatalogService) UpdateProduct(ctx context.Context, id int64, patch models.ProductPatch) (models.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return models.Product{}, err
	}

	patch.Apply(&product)
	if err := validateProduct(product); err != nil {
		return models.Product{}, err
	}

	if err := s.repo.UpdateProduct(ctx, &product); err != nil {
		return models.Product{}, fmt.Errorf("service: failed to update product %d: %w", id, err)
	}
	return product, nil
}

// DeleteProduct hard-deletes a product
func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("service: %w - invalid product ID", marketerrors.ErrProductNotFound)
	}
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("service: failed to delete product %d: %w", id, err)
	}
	return nil
}

// SeedCatalog inserts products when the catalog is empty and reports how many were added
func (s *CatalogService) SeedCatalog(ctx context.Context, products []models.Product) (int, error) {
	existing, err := s.repo.ListProducts(ctx, models.ProductFilter{})
	if err != nil {
		return 0, fmt.Errorf("service: failed to inspect catalog: %w", err)
	}
	if len(existing) > 0 {
		utils.Debug("SeedCatalog: catalog not empty, skipping", map[string]any{"count": len(existing)})
		return 0, nil
	}

	for _, p := range products {
		if _, err := s.CreateProduct(ctx, p); err != nil {
			return 0, fmt.Errorf("service: failed to seed %q: %w", p.Name, err)
		}
	}
	return len(products), nil
}

func validateProduct(p models.Product) error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return fmt.Errorf("service: %w - name is required", marketerrors.ErrInvalidProduct)
	case strings.TrimSpace(p.Description) == "":
		return fmt.Errorf("service: %w - description is required", marketerrors.ErrInvalidProduct)
	case strings.TrimSpace(p.CelebrityName) == "":
		return fmt.Errorf("service: %w - celebrityName is required", marketerrors.ErrInvalidProduct)
	case p.Price <= 0:
		return fmt.Errorf("service: %w - price must be positive", marketerrors.ErrInvalidProduct)
	case p.CharityPercent < 0 || p.CharityPercent > 100:
		return fmt.Errorf("service: %w - charityPercent must be between 0 and 100", marketerrors.ErrInvalidProduct)
	}
	return nil
}
